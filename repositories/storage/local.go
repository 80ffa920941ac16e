package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/carbocation/pfx"
)

type LocalSource struct {
	Directory string
	Pattern   string
}

func NewLocalSource(directory string, pattern string) *LocalSource {
	return &LocalSource{
		Directory: directory,
		Pattern:   pattern,
	}
}

func (s *LocalSource) Location() string {
	return s.Directory
}

func (s *LocalSource) List(ctx context.Context) ([]string, error) {
	if _, err := os.Stat(s.Directory); err != nil {
		return nil, pfx.Err(err)
	}

	matches, err := filepath.Glob(filepath.Join(s.Directory, s.Pattern))
	if err != nil {
		return nil, pfx.Err(err)
	}
	sort.Strings(matches)

	return matches, nil
}

func (s *LocalSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, pfx.Err(err)
	}
	return f, nil
}
