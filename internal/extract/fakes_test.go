package extract

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/MalithGihan/pdftext-service/internal/ingest"
	"github.com/MalithGihan/pdftext-service/internal/store"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type fakePage struct {
	text  string
	err   error
	panic bool
}

func (p fakePage) Text() (string, error) {
	if p.panic {
		panic("malformed content stream")
	}
	return p.text, p.err
}

type fakeDocument struct {
	pages  []fakePage
	closed int
}

func (d *fakeDocument) NumPage() int { return len(d.pages) }
func (d *fakeDocument) Page(n int) ingest.Page { return d.pages[n-1] }
func (d *fakeDocument) Close() error { d.closed++; return nil }

type fakeOpener struct {
	doc      *fakeDocument
	err      error
	lastPath string
}

func (o *fakeOpener) Open(path string) (ingest.Document, error) {
	o.lastPath = path
	if o.err != nil {
		return nil, o.err
	}
	return o.doc, nil
}

type rasterCall struct {
	path        string
	first, last int
}

type fakeRasterizer struct {
	images [][]byte
	err    error
	calls  []rasterCall
}

func (r *fakeRasterizer) Rasterize(ctx context.Context, pdfPath string, first, last int) ([][]byte, error) {
	r.calls = append(r.calls, rasterCall{pdfPath, first, last})
	if r.err != nil {
		return nil, r.err
	}
	return r.images, nil
}

type fakeRecognizer struct {
	text  string
	err   error
	calls int
}

func (r *fakeRecognizer) Recognize(ctx context.Context, image []byte) (string, error) {
	r.calls++
	if r.err != nil {
		return "", r.err
	}
	return r.text, nil
}

type fakeFile struct {
	path     string
	released int
	err      error
}

func (f *fakeFile) Path() string { return f.path }
func (f *fakeFile) Release() error {
	f.released++
	return f.err
}

type fakeStager struct {
	file   *fakeFile
	err    error
	staged []byte
	calls  int
}

func (s *fakeStager) Stage(r io.Reader, suffix string) (store.File, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	s.staged = b
	return s.file, nil
}

var errBoom = errors.New("boom")
