package store

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
)

// File is a transient on-disk copy owned by a single request.
type File interface {
	Path() string
	Release() error
}

type FS struct{ Root string }

func New(root string) (*FS, error) {
	if root == "" {
		root = os.TempDir()
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, eris.Wrapf(err, "create scratch root %s", root)
	}
	return &FS{Root: root}, nil
}

// Stage copies r in full into a new uniquely named file under Root. On error
// nothing is left on disk.
func (s *FS) Stage(r io.Reader, suffix string) (File, error) {
	path := filepath.Join(s.Root, "upload-"+uuid.NewString()+suffix)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return nil, eris.Wrap(err, "create transient file")
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return nil, eris.Wrap(err, "copy upload")
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return nil, eris.Wrap(err, "flush upload")
	}
	return &transient{path: path}, nil
}

type transient struct {
	path string
	once sync.Once
	err  error
}

func (t *transient) Path() string { return t.path }

// Release removes the file on the first call; later calls return the first result.
func (t *transient) Release() error {
	t.once.Do(func() {
		if err := os.Remove(t.path); err != nil && !os.IsNotExist(err) {
			t.err = eris.Wrapf(err, "remove %s", t.path)
		}
	})
	return t.err
}
