package capability

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/adrianliechti/docagent/pkg/document"
	"github.com/adrianliechti/docagent/pkg/extractor"
	"github.com/adrianliechti/docagent/pkg/provider"
	"github.com/adrianliechti/docagent/pkg/rasterizer"
	"github.com/adrianliechti/docagent/pkg/tool"
)

// Output is the JSON object reported back to the decision model.
type Output = map[string]any

type Provider interface {
	Tools(ctx context.Context) ([]tool.Tool, error)
	Execute(ctx context.Context, state *document.State, call Call) (Output, document.Delta, error)
}

type handler func(r *Registry, ctx context.Context, state *document.State, call Call) (Output, document.Delta, error)

// handlers never call each other; sequencing is up to the caller.
var handlers = map[Name]handler{
	Probe:                (*Registry).probe,
	ExtractText:          (*Registry).extractText,
	Rasterize:            (*Registry).rasterize,
	TextAnalyze:          (*Registry).textAnalyze,
	VisionAnalyze:        (*Registry).visionAnalyze,
	NormalizeAndValidate: (*Registry).normalize,
}

var _ Provider = &Registry{}

type Registry struct {
	extractor  extractor.Provider
	rasterizer rasterizer.Provider

	text   provider.Completer
	vision provider.Completer

	textLimit   int
	maxTokens   int
	temperature float32

	structured bool
}

type Option func(*Registry)

const DefaultTextLimit = 100000

func New(options ...Option) (*Registry, error) {
	r := &Registry{
		textLimit:   DefaultTextLimit,
		temperature: 0.2,
	}

	for _, option := range options {
		option(r)
	}

	if r.extractor == nil {
		return nil, errors.New("missing extractor provider")
	}

	if r.rasterizer == nil {
		return nil, errors.New("missing rasterizer provider")
	}

	if r.text == nil {
		return nil, errors.New("missing text completer")
	}

	if r.vision == nil {
		r.vision = r.text
	}

	return r, nil
}

func WithExtractor(extractor extractor.Provider) Option {
	return func(r *Registry) {
		r.extractor = extractor
	}
}

func WithRasterizer(rasterizer rasterizer.Provider) Option {
	return func(r *Registry) {
		r.rasterizer = rasterizer
	}
}

func WithTextCompleter(completer provider.Completer) Option {
	return func(r *Registry) {
		r.text = completer
	}
}

func WithVisionCompleter(completer provider.Completer) Option {
	return func(r *Registry) {
		r.vision = completer
	}
}

// WithTextLimit bounds the number of characters sent for text analysis.
func WithTextLimit(limit int) Option {
	return func(r *Registry) {
		if limit > 0 {
			r.textLimit = limit
		}
	}
}

func WithTemperature(temperature float32) Option {
	return func(r *Registry) {
		r.temperature = temperature
	}
}

func WithMaxTokens(tokens int) Option {
	return func(r *Registry) {
		if tokens > 0 {
			r.maxTokens = tokens
		}
	}
}

// WithStructuredOutput sends the record schema as response format
// instead of asking for a plain JSON object.
func WithStructuredOutput(enabled bool) Option {
	return func(r *Registry) {
		r.structured = enabled
	}
}

func (r *Registry) Tools(ctx context.Context) ([]tool.Tool, error) {
	return slices.Clone(definitions), nil
}

func (r *Registry) Execute(ctx context.Context, state *document.State, call Call) (Output, document.Delta, error) {
	if call == nil {
		return nil, document.Delta{}, ErrUnknown
	}

	h, ok := handlers[call.Name()]

	if !ok {
		return nil, document.Delta{}, fmt.Errorf("%w %s", ErrUnknown, call.Name())
	}

	return h(r, ctx, state, call)
}

func file(state *document.State) provider.File {
	return provider.File{
		Name: state.Name,

		Content:     state.Content(),
		ContentType: state.ContentType,
	}
}
