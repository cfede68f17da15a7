package extractor

import (
	"context"
	"errors"

	"github.com/adrianliechti/docagent/pkg/provider"
)

type Provider interface {
	Extract(ctx context.Context, input File, options *ExtractOptions) (*Document, error)
}

var (
	ErrUnsupported = errors.New("unsupported type")
)

type File = provider.File

type ExtractOptions struct {
	// SkipText only counts pages.
	SkipText bool
}

type Document struct {
	Text string

	// Pages is zero when the page count could not be determined.
	Pages int
}
