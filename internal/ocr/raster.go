package ocr

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

const defaultDPI = 200

// Pdftoppm rasterizes page ranges with poppler's pdftoppm.
type Pdftoppm struct {
	Binary     string
	DPI        int
	ScratchDir string
}

func NewPdftoppm(binary string, dpi int, scratchDir string) *Pdftoppm {
	return &Pdftoppm{Binary: binary, DPI: dpi, ScratchDir: scratchDir}
}

// Rasterize renders pages first..last (1-based, inclusive) of pdfPath as PNG
// images in page order. Only a failed binary lookup is reported as a
// MissingDependencyError; errors from a present binary carry its stderr.
func (p *Pdftoppm) Rasterize(ctx context.Context, pdfPath string, first, last int) ([][]byte, error) {
	if first < 1 || last < first {
		return nil, eris.Errorf("invalid page range %d-%d", first, last)
	}
	binary := p.Binary
	if binary == "" {
		binary = "pdftoppm"
	}
	dpi := p.DPI
	if dpi <= 0 {
		dpi = defaultDPI
	}
	bin, err := exec.LookPath(binary)
	if err != nil {
		return nil, &MissingDependencyError{Dependency: DependencyPoppler, Err: err}
	}

	dir, err := os.MkdirTemp(p.ScratchDir, "raster-*")
	if err != nil {
		return nil, eris.Wrap(err, "create raster scratch dir")
	}
	defer os.RemoveAll(dir)

	prefix := filepath.Join(dir, "page")
	args := []string{
		"-png",
		"-r", strconv.Itoa(dpi),
		"-f", strconv.Itoa(first),
		"-l", strconv.Itoa(last),
		pdfPath, prefix,
	}
	cmd := exec.CommandContext(ctx, bin, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, eris.Wrapf(err, "rasterize pages %d-%d: %s", first, last, strings.TrimSpace(stderr.String()))
	}

	// pdftoppm pads page numbers to a fixed width, so lexical order is page order.
	matches, err := filepath.Glob(prefix + "-*.png")
	if err != nil {
		return nil, eris.Wrap(err, "list rasterized pages")
	}
	slices.Sort(matches)

	images := make([][]byte, 0, len(matches))
	for _, m := range matches {
		b, err := os.ReadFile(m)
		if err != nil {
			return nil, eris.Wrapf(err, "read rasterized page %s", filepath.Base(m))
		}
		images = append(images, b)
	}
	return images, nil
}
