package storage

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"voicepage/internal/domain/page"
)

// PageStore keeps rendered pages as {dir}/{id}.html.
type PageStore struct {
	Dir string
}

func NewPageStore(dir string) *PageStore {
	if dir == "" {
		dir = "pages"
	}
	return &PageStore{Dir: dir}
}

func (ps *PageStore) path(id page.ID) (string, error) {
	id, err := page.ParseID(string(id))
	if err != nil {
		return "", err
	}
	return filepath.Join(ps.Dir, string(id)+".html"), nil
}

// Save writes html atomically and returns the file path.
func (ps *PageStore) Save(_ context.Context, id page.ID, html []byte) (string, error) {
	path, err := ps.path(id)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(ps.Dir, 0o755); err != nil {
		return "", errors.Wrap(err, "create page dir")
	}
	tmp, err := os.CreateTemp(ps.Dir, ".page-*")
	if err != nil {
		return "", errors.Wrap(err, "create temp page")
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(html); err != nil {
		tmp.Close()
		return "", errors.Wrap(err, "write page")
	}
	if err := tmp.Close(); err != nil {
		return "", errors.Wrap(err, "close page")
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return "", errors.Wrap(err, "chmod page")
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", errors.Wrap(err, "rename page")
	}
	return path, nil
}

// Load returns the stored html or page.ErrNotFound.
func (ps *PageStore) Load(_ context.Context, id page.ID) ([]byte, error) {
	path, err := ps.path(id)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, errors.Wrapf(page.ErrNotFound, "%s", id)
	}
	if err != nil {
		return nil, errors.Wrap(err, "read page")
	}
	return data, nil
}
