package config

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/adrianliechti/docagent/pkg/limiter"
	"github.com/adrianliechti/docagent/pkg/otel"
	"github.com/adrianliechti/docagent/pkg/provider"
	"github.com/adrianliechti/docagent/pkg/provider/openai"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const defaultTimeout = 120 * time.Second

const (
	completerText   = "text"
	completerVision = "vision"
	completerAgent  = "agent"
)

type providersConfig struct {
	Text   *providerConfig `yaml:"text"`
	Vision *providerConfig `yaml:"vision"`
	Agent  *providerConfig `yaml:"agent"`
}

type providerConfig struct {
	URL   string `yaml:"url"`
	Token string `yaml:"token"`

	Model string `yaml:"model"`

	Timeout *time.Duration `yaml:"timeout"`
	Retries *int           `yaml:"retries"`

	Limit *int `yaml:"limit"`

	MaxTokens   *int     `yaml:"max_tokens"`
	Temperature *float32 `yaml:"temperature"`

	Proxy *proxyConfig `yaml:"proxy"`
}

func (cfg *Config) RegisterCompleter(id string, p provider.Completer) {
	if cfg.completer == nil {
		cfg.completer = make(map[string]provider.Completer)
	}

	cfg.completer[id] = p
}

func (cfg *Config) Completer(id string) (provider.Completer, error) {
	if cfg.completer != nil {
		if c, ok := cfg.completer[id]; ok {
			return c, nil
		}
	}

	return nil, errors.New("completer not found: " + id)
}

func (cfg *Config) registerProviders(f *configFile) error {
	cfg.models = make(map[string]string)

	text := withDefaults(f.Providers.Text, providerConfig{
		URL:   envOr("TEXT_LLM_URL", defaultTextURL),
		Model: envOr("MODEL_LABEL", defaultModel),
	})

	vision := withDefaults(f.Providers.Vision, providerConfig{
		URL:   envOr("VISION_LLM_URL", defaultVisionURL),
		Model: envOr("MODEL_LABEL", defaultModel),
	})

	// the decision model runs on the text server unless configured otherwise
	agent := withDefaults(f.Providers.Agent, text)

	for id, config := range map[string]providerConfig{
		completerText:   text,
		completerVision: vision,
		completerAgent:  agent,
	} {
		completer, err := createCompleter(id, config)

		if err != nil {
			return err
		}

		cfg.RegisterCompleter(id, completer)
		cfg.models[id] = config.Model
	}

	return nil
}

func withDefaults(config *providerConfig, defaults providerConfig) providerConfig {
	if config == nil {
		return defaults
	}

	result := *config

	if result.URL == "" {
		result.URL = defaults.URL
	}

	if result.Token == "" {
		result.Token = defaults.Token
	}

	if result.Model == "" {
		result.Model = defaults.Model
	}

	if result.Timeout == nil {
		result.Timeout = defaults.Timeout
	}

	if result.Retries == nil {
		result.Retries = defaults.Retries
	}

	if result.Limit == nil {
		result.Limit = defaults.Limit
	}

	if result.Proxy == nil {
		result.Proxy = defaults.Proxy
	}

	return result
}

func createCompleter(id string, cfg providerConfig) (provider.Completer, error) {
	client, err := createClient(cfg)

	if err != nil {
		return nil, err
	}

	options := []openai.Option{
		openai.WithClient(client),
	}

	if cfg.Token != "" {
		options = append(options, openai.WithToken(cfg.Token))
	}

	if cfg.Retries != nil {
		options = append(options, openai.WithRetries(*cfg.Retries))
	}

	var completer provider.Completer

	completer, err = openai.NewCompleter(cfg.URL, cfg.Model, options...)

	if err != nil {
		return nil, err
	}

	if _, ok := completer.(limiter.Completer); !ok {
		completer = limiter.NewCompleter(createLimiter(cfg.Limit), completer)
	}

	if _, ok := completer.(otel.Completer); !ok {
		completer = otel.NewCompleter(id, cfg.Model, completer)
	}

	return completer, nil
}

type proxyConfig struct {
	URL string `yaml:"url"`
}

func createClient(cfg providerConfig) (*http.Client, error) {
	timeout := defaultTimeout

	if cfg.Timeout != nil {
		timeout = *cfg.Timeout
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()

	if cfg.Proxy != nil && cfg.Proxy.URL != "" {
		proxyURL, err := url.Parse(cfg.Proxy.URL)

		if err != nil {
			return nil, fmt.Errorf("invalid proxy url: %w", err)
		}

		transport.Proxy = http.ProxyURL(proxyURL)
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(transport),
	}, nil
}
