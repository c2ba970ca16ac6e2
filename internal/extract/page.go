package extract

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/MalithGihan/pdftext-service/internal/ingest"
	"github.com/MalithGihan/pdftext-service/internal/ocr"
)

// DefaultMinNativeChars is the trimmed native-text length at or above which a
// page is trusted as-is and OCR is skipped.
const DefaultMinNativeChars = 50

const (
	ocrSectionMarker = "\n\n[--- OCR Result (Image Text) ---]\n"
	ocrEmptyNote     = "\n[OCR executed but found no text]"
)

type Rasterizer interface {
	Rasterize(ctx context.Context, pdfPath string, first, last int) ([][]byte, error)
}

type Recognizer interface {
	Recognize(ctx context.Context, image []byte) (string, error)
}

// Diagnostic records why OCR could not run for a page.
type Diagnostic struct {
	Dependency ocr.Dependency
	Err        error
}

// PageText is the outcome for one page. Diagnostic is set when rasterization
// or recognition failed; its remediation text is already part of Text.
type PageText struct {
	Text       string
	Diagnostic *Diagnostic
}

// Resolver produces the best-effort text for a single page, falling back to
// OCR when the native text layer is too thin.
type Resolver struct {
	Rasterizer     Rasterizer
	Recognizer     Recognizer
	MinNativeChars int
	Logger         *slog.Logger
}

func NewResolver(r Rasterizer, rec Recognizer, minNativeChars int, logger *slog.Logger) *Resolver {
	if minNativeChars <= 0 {
		minNativeChars = DefaultMinNativeChars
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{Rasterizer: r, Recognizer: rec, MinNativeChars: minNativeChars, Logger: logger}
}

// Resolve never fails; OCR problems are folded into the returned text.
func (r *Resolver) Resolve(ctx context.Context, page ingest.Page, pdfPath string, pageNumber int) PageText {
	log := r.Logger.With("page", pageNumber)

	text, err := page.Text()
	if err != nil {
		log.Warn("native text extraction failed", "error", err)
		text = ""
	}
	if utf8.RuneCountInString(strings.TrimSpace(text)) >= r.MinNativeChars {
		return PageText{Text: text}
	}

	res := PageText{Text: text}
	ocrText, ok, err := r.recognize(ctx, pdfPath, pageNumber)
	switch {
	case err != nil:
		dep := ocr.Classify(err)
		log.Error("OCR failed", "error", err, "dependency", dep.String())
		res.Text += "\n\n" + ocr.Remediation(err)
		res.Diagnostic = &Diagnostic{Dependency: dep, Err: err}
	case !ok:
		// no image, the native text stands
	case strings.TrimSpace(ocrText) != "":
		res.Text += ocrSectionMarker + ocrText
	default:
		res.Text += ocrEmptyNote
	}
	return res
}

// recognize rasterizes only pageNumber and runs OCR over it. ok is false when
// the rasterizer produced no image.
func (r *Resolver) recognize(ctx context.Context, pdfPath string, pageNumber int) (text string, ok bool, err error) {
	images, err := r.Rasterizer.Rasterize(ctx, pdfPath, pageNumber, pageNumber)
	if err != nil {
		return "", false, err
	}
	if len(images) == 0 {
		return "", false, nil
	}
	text, err = r.Recognizer.Recognize(ctx, images[0])
	if err != nil {
		return "", false, err
	}
	return text, true, nil
}
