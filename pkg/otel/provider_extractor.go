package otel

import (
	"context"

	"github.com/adrianliechti/docagent/pkg/extractor"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

type Extractor interface {
	Observable
	extractor.Provider
}

type observableExtractor struct {
	provider string

	extractor extractor.Provider
}

func NewExtractor(provider string, p extractor.Provider) Extractor {
	return &observableExtractor{
		extractor: p,

		provider: provider,
	}
}

func (p *observableExtractor) otelSetup() {
}

func (p *observableExtractor) Extract(ctx context.Context, file extractor.File, options *extractor.ExtractOptions) (*extractor.Document, error) {
	ctx, span := otel.Tracer(instrumentationName).Start(ctx, "extract "+p.provider)
	defer span.End()

	result, err := p.extractor.Extract(ctx, file, options)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		return nil, err
	}

	span.SetAttributes(
		Int("document.pages", result.Pages),
		Int("document.chars", len(result.Text)),
	)

	return result, nil
}
