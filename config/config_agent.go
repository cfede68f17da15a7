package config

import (
	"errors"
	"strconv"

	"github.com/adrianliechti/docagent/pkg/capability"
	"github.com/adrianliechti/docagent/pkg/chain/agent"
	"github.com/adrianliechti/docagent/pkg/otel"
)

type agentConfig struct {
	MaxTurns *int `yaml:"max_turns"`
	MaxPages *int `yaml:"max_pages"`

	TextLimit *int `yaml:"text_limit"`

	StructuredOutput *bool `yaml:"structured_output"`
}

func (cfg *Config) Agent() *agent.Chain {
	return cfg.agent
}

func (cfg *Config) Capabilities() capability.Provider {
	return cfg.capabilities
}

func (cfg *Config) registerAgent(f *configFile) error {
	if val := envOr("MAX_PAGES_DEF", ""); val != "" {
		pages, err := strconv.Atoi(val)

		if err != nil {
			return errors.New("invalid MAX_PAGES_DEF: " + val)
		}

		cfg.MaxPages = pages
	}

	if f.Agent.MaxPages != nil {
		cfg.MaxPages = *f.Agent.MaxPages
	}

	if cfg.MaxPages < capability.MinPages || cfg.MaxPages > capability.MaxPages {
		return errors.New("max pages out of range: " + strconv.Itoa(cfg.MaxPages))
	}

	text, err := cfg.Completer(completerText)

	if err != nil {
		return err
	}

	vision, err := cfg.Completer(completerVision)

	if err != nil {
		return err
	}

	decision, err := cfg.Completer(completerAgent)

	if err != nil {
		return err
	}

	options := []capability.Option{
		capability.WithExtractor(cfg.extractor),
		capability.WithRasterizer(cfg.rasterizer),

		capability.WithTextCompleter(text),
		capability.WithVisionCompleter(vision),
	}

	if f.Agent.TextLimit != nil {
		options = append(options, capability.WithTextLimit(*f.Agent.TextLimit))
	}

	if f.Agent.StructuredOutput != nil {
		options = append(options, capability.WithStructuredOutput(*f.Agent.StructuredOutput))
	}

	if p := f.Providers.Text; p != nil && p.Temperature != nil {
		options = append(options, capability.WithTemperature(*p.Temperature))
	}

	if p := f.Providers.Text; p != nil && p.MaxTokens != nil {
		options = append(options, capability.WithMaxTokens(*p.MaxTokens))
	}

	registry, err := capability.New(options...)

	if err != nil {
		return err
	}

	cfg.capabilities = otel.NewCapabilities("registry", registry)

	chainOptions := []agent.Option{
		agent.WithCompleter(decision),
		agent.WithCapabilities(cfg.capabilities),
	}

	if f.Agent.MaxTurns != nil {
		chainOptions = append(chainOptions, agent.WithMaxTurns(*f.Agent.MaxTurns))
	}

	if p := f.Providers.Agent; p != nil && p.Temperature != nil {
		chainOptions = append(chainOptions, agent.WithTemperature(*p.Temperature))
	}

	chain, err := agent.New(cfg.models[completerAgent], chainOptions...)

	if err != nil {
		return err
	}

	cfg.agent = chain

	return nil
}
