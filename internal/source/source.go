package source

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"strings"

	_ "golang.org/x/image/webp"
)

// ErrNotFound is returned when a frame asset does not exist.
var ErrNotFound = errors.New("frame asset not found")

// Loader fetches and decodes a single frame asset by key, e.g.
// "sequence-master/ezgif-frame-001.png".
type Loader interface {
	Load(ctx context.Context, key string) (image.Image, error)
	// Probe checks that key exists and decodes far enough to read its
	// dimensions, without decoding pixels.
	Probe(ctx context.Context, key string) (image.Config, error)
}

// New picks a loader for root: an http(s) base URL or a local directory.
func New(root string) (Loader, error) {
	switch {
	case strings.HasPrefix(root, "http://"), strings.HasPrefix(root, "https://"):
		return NewHTTPLoader(root, nil), nil
	case root == "":
		return nil, fmt.Errorf("empty asset root")
	default:
		return NewDirLoader(root)
	}
}

func decode(r io.Reader, key string) (image.Image, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return img, nil
}

func decodeConfig(r io.Reader, key string) (image.Config, error) {
	cfg, _, err := image.DecodeConfig(r)
	if err != nil {
		return image.Config{}, fmt.Errorf("decode config %s: %w", key, err)
	}
	return cfg, nil
}
