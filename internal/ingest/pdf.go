package ingest

import (
	"os"

	"github.com/ledongthuc/pdf"
	"github.com/rotisserie/eris"
)

// Page is one page of an open document. Its position in the document is
// carried by the caller, which is enough to re-rasterize it.
type Page interface {
	Text() (string, error)
}

// Document is an open handle over a PDF on disk. Pages are numbered from 1.
type Document interface {
	NumPage() int
	Page(n int) Page
	Close() error
}

type Opener interface {
	Open(path string) (Document, error)
}

// PDFOpener opens documents with ledongthuc/pdf.
type PDFOpener struct{}

func (PDFOpener) Open(path string) (Document, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "open pdf %s", path)
	}
	return &pdfDocument{file: f, reader: r}, nil
}

type pdfDocument struct {
	file   *os.File
	reader *pdf.Reader
}

func (d *pdfDocument) NumPage() int { return d.reader.NumPage() }

func (d *pdfDocument) Page(n int) Page { return pdfPage{page: d.reader.Page(n)} }

func (d *pdfDocument) Close() error { return d.file.Close() }

type pdfPage struct {
	page pdf.Page
}

// Text returns the native text layer; a page without content yields "".
func (p pdfPage) Text() (string, error) {
	if p.page.V.IsNull() {
		return "", nil
	}
	text, err := p.page.GetPlainText(nil)
	if err != nil {
		return "", eris.Wrap(err, "extract native text")
	}
	return text, nil
}
