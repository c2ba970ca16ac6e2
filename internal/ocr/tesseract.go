package ocr

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/otiai10/gosseract/v2"
	"github.com/rotisserie/eris"
)

// Gosseract recognizes text through the libtesseract bindings.
type Gosseract struct {
	clientFactory func() *gosseract.Client
}

func NewGosseract() *Gosseract {
	return &Gosseract{clientFactory: gosseract.NewClient}
}

func (g *Gosseract) Recognize(ctx context.Context, image []byte) (string, error) {
	c := g.clientFactory()
	defer c.Close()
	if err := c.SetImageFromBytes(image); err != nil {
		return "", eris.Wrap(err, "load image")
	}
	text, err := c.Text()
	if err != nil {
		return "", eris.Wrap(err, "recognize image")
	}
	return text, nil
}

// TesseractCLI pipes the image through the tesseract binary.
type TesseractCLI struct {
	Binary string
}

func NewTesseractCLI(binary string) *TesseractCLI {
	return &TesseractCLI{Binary: binary}
}

func (t *TesseractCLI) Recognize(ctx context.Context, image []byte) (string, error) {
	binary := t.Binary
	if binary == "" {
		binary = "tesseract"
	}
	bin, err := exec.LookPath(binary)
	if err != nil {
		return "", &MissingDependencyError{Dependency: DependencyTesseract, Err: err}
	}
	cmd := exec.CommandContext(ctx, bin, "stdin", "stdout")
	cmd.Stdin = bytes.NewReader(image)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", eris.Wrapf(err, "recognize image: %s", strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}
