package limiter

import (
	"context"

	"github.com/adrianliechti/docagent/pkg/rasterizer"

	"golang.org/x/time/rate"
)

type Rasterizer interface {
	Limiter
	rasterizer.Provider
}

type limitedRasterizer struct {
	limiter  *rate.Limiter
	provider rasterizer.Provider
}

func NewRasterizer(l *rate.Limiter, p rasterizer.Provider) Rasterizer {
	return &limitedRasterizer{
		limiter:  l,
		provider: p,
	}
}

func (p *limitedRasterizer) limiterSetup() {
}

func (p *limitedRasterizer) Rasterize(ctx context.Context, input rasterizer.File, options *rasterizer.RasterizeOptions) ([]rasterizer.Image, error) {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	return p.provider.Rasterize(ctx, input, options)
}
