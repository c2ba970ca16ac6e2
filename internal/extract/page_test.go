package extract

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/MalithGihan/pdftext-service/internal/ocr"
)

const longText = "This page carries a real text layer with well over fifty characters in it."

func newTestResolver(r *fakeRasterizer, rec *fakeRecognizer) *Resolver {
	return NewResolver(r, rec, 0, discard)
}

func TestResolve_NativeTextSkipsOCR(t *testing.T) {
	raster := &fakeRasterizer{images: [][]byte{[]byte("png")}}
	rec := &fakeRecognizer{text: "should not appear"}

	got := newTestResolver(raster, rec).Resolve(context.Background(), fakePage{text: longText}, "doc.pdf", 1)

	if got.Text != longText {
		t.Fatalf("expected native text unchanged, got %q", got.Text)
	}
	if len(raster.calls) != 0 || rec.calls != 0 {
		t.Fatalf("OCR should not run: raster=%d rec=%d", len(raster.calls), rec.calls)
	}
}

func TestResolve_Threshold(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantOCR bool
	}{
		{"49 chars", strings.Repeat("a", 49), true},
		{"50 chars", strings.Repeat("a", 50), false},
		{"50 chars padded", "   " + strings.Repeat("a", 50) + "\n\n", false},
		{"49 chars padded to 60", "     " + strings.Repeat("a", 49) + "      ", true},
		{"50 multibyte runes", strings.Repeat("é", 50), false},
		{"empty", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raster := &fakeRasterizer{}
			got := newTestResolver(raster, &fakeRecognizer{}).Resolve(context.Background(), fakePage{text: tt.text}, "doc.pdf", 1)
			if ran := len(raster.calls) > 0; ran != tt.wantOCR {
				t.Fatalf("rasterizer called=%v, want %v", ran, tt.wantOCR)
			}
			if !tt.wantOCR && got.Text != tt.text {
				t.Fatalf("expected native text unchanged, got %q", got.Text)
			}
		})
	}
}

func TestResolve_AppendsLabeledOCRSection(t *testing.T) {
	raster := &fakeRasterizer{images: [][]byte{[]byte("png")}}
	rec := &fakeRecognizer{text: "Invoice #42"}

	got := newTestResolver(raster, rec).Resolve(context.Background(), fakePage{text: "Header"}, "/tmp/doc.pdf", 3)

	if !strings.HasPrefix(got.Text, "Header") {
		t.Fatalf("expected native text prefix, got %q", got.Text)
	}
	if !strings.HasSuffix(got.Text, "[--- OCR Result (Image Text) ---]\nInvoice #42") {
		t.Fatalf("expected labeled OCR section, got %q", got.Text)
	}
	if got.Diagnostic != nil {
		t.Fatalf("unexpected diagnostic: %+v", got.Diagnostic)
	}
	want := rasterCall{path: "/tmp/doc.pdf", first: 3, last: 3}
	if len(raster.calls) != 1 || raster.calls[0] != want {
		t.Fatalf("expected single-page rasterization %+v, got %+v", want, raster.calls)
	}
}

func TestResolve_NoImageKeepsNativeText(t *testing.T) {
	rec := &fakeRecognizer{text: "unused"}

	got := newTestResolver(&fakeRasterizer{}, rec).Resolve(context.Background(), fakePage{text: "tiny"}, "doc.pdf", 1)

	if got.Text != "tiny" {
		t.Fatalf("expected native text alone, got %q", got.Text)
	}
	if rec.calls != 0 || got.Diagnostic != nil {
		t.Fatal("recognizer must not run without an image")
	}
}

func TestResolve_OCRFoundNothing(t *testing.T) {
	raster := &fakeRasterizer{images: [][]byte{[]byte("png")}}
	rec := &fakeRecognizer{text: " \n\t "}

	got := newTestResolver(raster, rec).Resolve(context.Background(), fakePage{}, "doc.pdf", 1)

	if got.Text != "\n[OCR executed but found no text]" {
		t.Fatalf("unexpected text %q", got.Text)
	}
}

func TestResolve_OCRErrorsBecomeDiagnostics(t *testing.T) {
	tests := []struct {
		name      string
		rasterErr error
		ocrErr    error
		wantDep   ocr.Dependency
		want      []string
	}{
		{
			name:    "tesseract missing",
			ocrErr:  errors.New("tesseract is not installed or it's not in your PATH"),
			wantDep: ocr.DependencyTesseract,
			want:    []string{"System is missing 'Tesseract'.", "Windows:", "Mac: brew install tesseract", "Linux: sudo apt install tesseract-ocr"},
		},
		{
			name:      "poppler missing",
			rasterErr: errors.New(`exec: "pdftoppm": executable file not found in $PATH`),
			wantDep:   ocr.DependencyPoppler,
			want:      []string{"System is missing 'Poppler'.", "Mac: brew install poppler", "Linux: sudo apt install poppler-utils"},
		},
		{
			name:    "generic",
			ocrErr:  errors.New("image decode failed"),
			wantDep: ocr.DependencyUnknown,
			want:    []string{"[OCR Error]: image decode failed"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raster := &fakeRasterizer{images: [][]byte{[]byte("png")}, err: tt.rasterErr}
			rec := &fakeRecognizer{err: tt.ocrErr}

			got := newTestResolver(raster, rec).Resolve(context.Background(), fakePage{text: "abc"}, "doc.pdf", 2)

			if !strings.HasPrefix(got.Text, "abc\n\n") {
				t.Fatalf("expected native prefix, got %q", got.Text)
			}
			for _, w := range tt.want {
				if !strings.Contains(got.Text, w) {
					t.Errorf("missing %q in %q", w, got.Text)
				}
			}
			if got.Diagnostic == nil || got.Diagnostic.Err == nil {
				t.Fatal("expected a diagnostic to be recorded")
			}
			if got.Diagnostic.Dependency != tt.wantDep {
				t.Fatalf("diagnostic dependency = %v, want %v", got.Diagnostic.Dependency, tt.wantDep)
			}
		})
	}
}

func TestResolve_NativeTextErrorFallsBackToOCR(t *testing.T) {
	raster := &fakeRasterizer{images: [][]byte{[]byte("png")}}
	rec := &fakeRecognizer{text: "scanned words"}

	got := newTestResolver(raster, rec).Resolve(context.Background(), fakePage{err: errBoom}, "doc.pdf", 1)

	if !strings.Contains(got.Text, "scanned words") {
		t.Fatalf("expected OCR text, got %q", got.Text)
	}
}
