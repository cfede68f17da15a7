package otel

import (
	"context"

	"github.com/adrianliechti/docagent/pkg/rasterizer"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

type Rasterizer interface {
	Observable
	rasterizer.Provider
}

type observableRasterizer struct {
	provider string

	rasterizer rasterizer.Provider
}

func NewRasterizer(provider string, p rasterizer.Provider) Rasterizer {
	return &observableRasterizer{
		rasterizer: p,

		provider: provider,
	}
}

func (p *observableRasterizer) otelSetup() {
}

func (p *observableRasterizer) Rasterize(ctx context.Context, file rasterizer.File, options *rasterizer.RasterizeOptions) ([]rasterizer.Image, error) {
	ctx, span := otel.Tracer(instrumentationName).Start(ctx, "rasterize "+p.provider)
	defer span.End()

	images, err := p.rasterizer.Rasterize(ctx, file, options)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		return nil, err
	}

	span.SetAttributes(Int("document.images", len(images)))

	return images, nil
}
