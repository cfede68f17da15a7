package config

import (
	"github.com/adrianliechti/docagent/pkg/extractor"
	"github.com/adrianliechti/docagent/pkg/extractor/pdf"
	"github.com/adrianliechti/docagent/pkg/limiter"
	"github.com/adrianliechti/docagent/pkg/otel"
)

type extractorConfig struct {
	Limit *int `yaml:"limit"`
}

func (cfg *Config) Extractor() extractor.Provider {
	return cfg.extractor
}

func (cfg *Config) registerExtractor(f *configFile) error {
	var extractor extractor.Provider

	extractor, err := pdf.New()

	if err != nil {
		return err
	}

	if _, ok := extractor.(limiter.Extractor); !ok {
		extractor = limiter.NewExtractor(createLimiter(f.Extractor.Limit), extractor)
	}

	if _, ok := extractor.(otel.Extractor); !ok {
		extractor = otel.NewExtractor("pdf", extractor)
	}

	cfg.extractor = extractor

	return nil
}
