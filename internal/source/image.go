package source

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io/fs"
	"os"
	"path/filepath"
)

// DirLoader reads frames from a directory on disk.
type DirLoader struct {
	root string
}

func NewDirLoader(root string) (*DirLoader, error) {
	fi, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("asset root %s is not a directory", root)
	}
	return &DirLoader{root: root}, nil
}

func (l *DirLoader) Load(ctx context.Context, key string) (image.Image, error) {
	f, err := l.open(ctx, key)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return decode(f, key)
}

func (l *DirLoader) Probe(ctx context.Context, key string) (image.Config, error) {
	f, err := l.open(ctx, key)
	if err != nil {
		return image.Config{}, err
	}
	defer f.Close()

	return decodeConfig(f, key)
}

func (l *DirLoader) open(ctx context.Context, key string) (*os.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(filepath.Join(l.root, filepath.FromSlash(key)))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return f, err
}
