package config

import (
	"github.com/adrianliechti/docagent/pkg/limiter"
	"github.com/adrianliechti/docagent/pkg/otel"
	"github.com/adrianliechti/docagent/pkg/rasterizer"
	"github.com/adrianliechti/docagent/pkg/rasterizer/poppler"
)

type rasterizerConfig struct {
	Pdftoppm string `yaml:"pdftoppm"`

	Quality *int `yaml:"quality"`
	Limit   *int `yaml:"limit"`
}

func (cfg *Config) Rasterizer() rasterizer.Provider {
	return cfg.rasterizer
}

func (cfg *Config) registerRasterizer(f *configFile) error {
	var options []poppler.Option

	if f.Rasterizer.Pdftoppm != "" {
		options = append(options, poppler.WithPath(f.Rasterizer.Pdftoppm))
	}

	if f.Rasterizer.Quality != nil {
		options = append(options, poppler.WithQuality(*f.Rasterizer.Quality))
	}

	var rasterizer rasterizer.Provider

	rasterizer, err := poppler.New(options...)

	if err != nil {
		return err
	}

	if _, ok := rasterizer.(limiter.Rasterizer); !ok {
		rasterizer = limiter.NewRasterizer(createLimiter(f.Rasterizer.Limit), rasterizer)
	}

	if _, ok := rasterizer.(otel.Rasterizer); !ok {
		rasterizer = otel.NewRasterizer("poppler", rasterizer)
	}

	cfg.rasterizer = rasterizer

	return nil
}
