package otel

import (
	"context"

	"github.com/adrianliechti/docagent/pkg/capability"
	"github.com/adrianliechti/docagent/pkg/document"
	"github.com/adrianliechti/docagent/pkg/tool"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

type Capabilities interface {
	Observable
	capability.Provider
}

type observableCapabilities struct {
	provider string

	capabilities capability.Provider
}

func NewCapabilities(provider string, p capability.Provider) Capabilities {
	return &observableCapabilities{
		capabilities: p,

		provider: provider,
	}
}

func (p *observableCapabilities) otelSetup() {
}

func (p *observableCapabilities) Tools(ctx context.Context) ([]tool.Tool, error) {
	ctx, span := otel.Tracer(instrumentationName).Start(ctx, "tools")
	defer span.End()

	return p.capabilities.Tools(ctx)
}

func (p *observableCapabilities) Execute(ctx context.Context, state *document.State, call capability.Call) (capability.Output, document.Delta, error) {
	ctx, span := otel.Tracer(instrumentationName).Start(ctx, "execute_tool "+string(call.Name()))
	defer span.End()

	span.SetAttributes(
		String("gen_ai.tool.name", string(call.Name())),
		String("gen_ai.system", p.provider),
	)

	output, delta, err := p.capabilities.Execute(ctx, state, call)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	return output, delta, err
}
