package config

import (
	"bytes"
	"os"

	"github.com/adrianliechti/docagent/pkg/capability"
	"github.com/adrianliechti/docagent/pkg/chain/agent"
	"github.com/adrianliechti/docagent/pkg/document"
	"github.com/adrianliechti/docagent/pkg/extractor"
	"github.com/adrianliechti/docagent/pkg/provider"
	"github.com/adrianliechti/docagent/pkg/rasterizer"

	"golang.org/x/time/rate"
	"gopkg.in/yaml.v3"
)

const (
	defaultAddress = ":7001"

	defaultTextURL   = "http://127.0.0.1:8000"
	defaultVisionURL = "http://127.0.0.1:8001"

	defaultModel = "local-gguf"
)

type Config struct {
	Address string
	Version string

	// MaxPages is the rasterization bound used when a request does not name one.
	MaxPages int

	models    map[string]string
	completer map[string]provider.Completer

	extractor  extractor.Provider
	rasterizer rasterizer.Provider

	capabilities capability.Provider

	agent *agent.Chain
}

// Parse reads the configuration file at path. An empty path yields the
// defaults, which can be overridden with the TEXT_LLM_URL, VISION_LLM_URL,
// MODEL_LABEL and MAX_PAGES_DEF environment variables.
func Parse(path string) (*Config, error) {
	file := &configFile{}

	if path != "" {
		f, err := parseFile(path)

		if err != nil {
			return nil, err
		}

		file = f
	}

	c := &Config{
		Address:  defaultAddress,
		MaxPages: document.DefaultMaxPages,
	}

	if file.Address != "" {
		c.Address = file.Address
	}

	if err := c.registerProviders(file); err != nil {
		return nil, err
	}

	if err := c.registerExtractor(file); err != nil {
		return nil, err
	}

	if err := c.registerRasterizer(file); err != nil {
		return nil, err
	}

	if err := c.registerAgent(file); err != nil {
		return nil, err
	}

	return c, nil
}

type configFile struct {
	Address string `yaml:"address"`

	Providers providersConfig `yaml:"providers"`

	Extractor  extractorConfig  `yaml:"extractor"`
	Rasterizer rasterizerConfig `yaml:"rasterizer"`

	Agent agentConfig `yaml:"agent"`
}

func parseFile(path string) (*configFile, error) {
	data, err := os.ReadFile(path)

	if err != nil {
		return nil, err
	}

	data = []byte(os.ExpandEnv(string(data)))

	var config configFile

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	if err := decoder.Decode(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func createLimiter(limit *int) *rate.Limiter {
	if limit == nil {
		return nil
	}

	return rate.NewLimiter(rate.Limit(*limit), *limit)
}

func envOr(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return fallback
}
