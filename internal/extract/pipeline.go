package extract

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/MalithGihan/pdftext-service/internal/ingest"
	"github.com/MalithGihan/pdftext-service/internal/store"
	"github.com/MalithGihan/pdftext-service/pkg/types"
)

var (
	// ErrInvalidFileType rejects uploads whose name does not end in .pdf.
	ErrInvalidFileType = eris.New("invalid file type")
	// ErrUnreadableDocument covers unparseable documents, zero-page documents
	// and any unexpected failure while reading pages.
	ErrUnreadableDocument = eris.New("unreadable document")
	// ErrPersistUpload means the upload could not be copied to scratch storage.
	ErrPersistUpload = eris.New("failed to save file")
)

// Upload is one uploaded document as received from the caller.
type Upload struct {
	Filename string
	Body     io.Reader
}

type Stager interface {
	Stage(r io.Reader, suffix string) (store.File, error)
}

type PageResolver interface {
	Resolve(ctx context.Context, page ingest.Page, pdfPath string, pageNumber int) PageText
}

// Pipeline runs the end-to-end extraction for one upload.
type Pipeline struct {
	stager   Stager
	opener   ingest.Opener
	resolver PageResolver
	logger   *slog.Logger
}

func NewPipeline(stager Stager, opener ingest.Opener, resolver PageResolver, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{stager: stager, opener: opener, resolver: resolver, logger: logger}
}

// Extract validates, stages and reads the upload. The staged copy is released
// exactly once on every return path.
func (p *Pipeline) Extract(ctx context.Context, up Upload) (types.ExtractionReport, error) {
	if !ingest.IsPDF(up.Filename) {
		return types.ExtractionReport{}, ErrInvalidFileType
	}
	log := p.logger.With("filename", up.Filename)

	file, err := p.stager.Stage(up.Body, ".pdf")
	if err != nil {
		log.Error("persist upload", "error", err)
		return types.ExtractionReport{}, fmt.Errorf("%w: %w", ErrPersistUpload, err)
	}
	defer func() {
		if err := file.Release(); err != nil {
			log.Warn("remove transient file", "path", file.Path(), "error", err)
		}
	}()

	log.Info("processing file", "path", file.Path())
	report, err := p.read(ctx, file.Path(), log)
	if err != nil {
		log.Error("critical error processing PDF", "error", err)
		return types.ExtractionReport{}, ErrUnreadableDocument
	}
	report.Filename = up.Filename
	return report, nil
}

func (p *Pipeline) read(ctx context.Context, path string, log *slog.Logger) (report types.ExtractionReport, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = eris.Errorf("panic while reading document: %v", rec)
		}
	}()

	doc, err := p.opener.Open(path)
	if err != nil {
		return report, err
	}
	defer doc.Close()

	total := doc.NumPage()
	if total <= 0 {
		return report, eris.New("PDF has no pages")
	}

	data := make([]types.PageResult, 0, total)
	for n := 1; n <= total; n++ {
		res := p.resolver.Resolve(ctx, doc.Page(n), path, n)
		text := strings.TrimSpace(res.Text)
		if text == "" {
			text = types.BlankPage
		}
		if res.Diagnostic != nil {
			log.Warn("page resolved with OCR diagnostic", "page", n, "dependency", res.Diagnostic.Dependency.String())
		}
		data = append(data, types.PageResult{Page: n, Text: text})
	}
	return types.ExtractionReport{TotalPages: total, Data: data}, nil
}
