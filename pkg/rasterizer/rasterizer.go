package rasterizer

import (
	"context"
	"errors"

	"github.com/adrianliechti/docagent/pkg/provider"
)

type Provider interface {
	Rasterize(ctx context.Context, input File, options *RasterizeOptions) ([]Image, error)
}

var (
	ErrUnsupported = errors.New("unsupported type")
)

type File = provider.File

type RasterizeOptions struct {
	MaxPages int

	DPI   int
	Width int
}

// Image is one rendered page encoded as a data URL.
type Image struct {
	Page int

	Width  int
	Height int

	URL string
}

func URLs(images []Image) []string {
	result := make([]string, 0, len(images))

	for _, i := range images {
		result = append(result, i.URL)
	}

	return result
}
