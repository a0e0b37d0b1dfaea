package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/hammamikhairi/recipebook/internal/domain"
	"github.com/hammamikhairi/recipebook/internal/logger"
)

// Compile-time interface check.
var _ domain.DocumentFetcher = (*DirFetcher)(nil)

// DirFetcher reads documents from a filesystem tree.
type DirFetcher struct {
	fsys fs.FS
	log  *logger.Logger
}

// NewDirFetcher creates a fetcher reading from the directory root.
func NewDirFetcher(root string, log *logger.Logger) *DirFetcher {
	return NewFSFetcher(os.DirFS(root), log)
}

// NewFSFetcher creates a fetcher over any fs.FS (tests use fstest.MapFS).
func NewFSFetcher(fsys fs.FS, log *logger.Logger) *DirFetcher {
	return &DirFetcher{fsys: fsys, log: log}
}

// Fetch reads the file at the slash-separated path. Paths escaping the root
// are rejected.
func (f *DirFetcher) Fetch(ctx context.Context, p string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrFetch, err)
	}

	name := path.Clean(strings.TrimPrefix(p, "/"))
	if !fs.ValidPath(name) {
		return nil, fmt.Errorf("%w: invalid path %q", domain.ErrFetch, p)
	}

	data, err := fs.ReadFile(f.fsys, name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrFetch, name, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrFetch, name, err)
	}

	f.log.Debug("source: read %s (%d bytes)", name, len(data))
	return data, nil
}
