package openai

import (
	"net/http"
	"strings"

	"github.com/openai/openai-go/v3/option"
)

type Config struct {
	url string

	token string
	model string

	retries int

	client *http.Client
}

type Option func(*Config)

func WithClient(client *http.Client) Option {
	return func(c *Config) {
		c.client = client
	}
}

func WithToken(token string) Option {
	return func(c *Config) {
		c.token = token
	}
}

// WithRetries enables SDK side retries. Requests are not retried by default.
func WithRetries(retries int) Option {
	return func(c *Config) {
		c.retries = retries
	}
}

func (c *Config) Options() []option.RequestOption {
	if c.url == "" {
		c.url = "http://127.0.0.1:8000/v1/"
	}

	if c.client == nil {
		c.client = http.DefaultClient
	}

	c.url = strings.TrimRight(c.url, "/")

	if !strings.HasSuffix(c.url, "/v1") {
		c.url += "/v1"
	}

	c.url += "/"

	options := []option.RequestOption{
		option.WithBaseURL(c.url),
		option.WithHTTPClient(c.client),
		option.WithMaxRetries(c.retries),
	}

	if c.token != "" {
		options = append(options, option.WithAPIKey(c.token))
	}

	return options
}
