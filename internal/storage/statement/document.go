package statement

import (
	"context"
	"errors"
	"path"
	"strings"

	"github.com/newthinker/finratio/internal/storage/archive"
)

const documentExt = ".json"

// DocumentBackend stores each document as <collection>/<symbol>.json on
// an archive storage (local directory or S3 bucket).
type DocumentBackend struct {
	storage archive.Storage
}

// NewDocumentBackend wraps storage.
func NewDocumentBackend(storage archive.Storage) *DocumentBackend {
	return &DocumentBackend{storage: storage}
}

// DocumentPath is the storage path of one document.
func DocumentPath(c Collection, symbol string) string {
	return path.Join(string(c), symbol+documentExt)
}

func (d *DocumentBackend) Get(ctx context.Context, c Collection, symbol string) ([]byte, error) {
	doc, err := d.storage.Read(ctx, DocumentPath(c, symbol))
	if errors.Is(err, archive.ErrNotFound) {
		return nil, notFound(c, symbol)
	}
	return doc, err
}

func (d *DocumentBackend) Put(ctx context.Context, c Collection, symbol string, doc []byte) error {
	return d.storage.Write(ctx, DocumentPath(c, symbol), doc)
}

func (d *DocumentBackend) Symbols(ctx context.Context, c Collection) ([]string, error) {
	paths, err := d.storage.List(ctx, string(c))
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		dir, file := path.Split(p)
		if strings.TrimSuffix(dir, "/") != string(c) || !strings.HasSuffix(file, documentExt) {
			continue
		}
		out = append(out, strings.TrimSuffix(file, documentExt))
	}
	return out, nil
}

func (d *DocumentBackend) Close() error {
	return nil
}
