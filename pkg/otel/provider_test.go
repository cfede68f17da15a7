package otel

import (
	"context"
	"errors"
	"testing"

	"github.com/adrianliechti/docagent/pkg/capability"
	"github.com/adrianliechti/docagent/pkg/document"
	"github.com/adrianliechti/docagent/pkg/extractor"
	"github.com/adrianliechti/docagent/pkg/provider"
	"github.com/adrianliechti/docagent/pkg/rasterizer"
	"github.com/adrianliechti/docagent/pkg/tool"

	"github.com/stretchr/testify/require"
)

type mockCompleter struct {
	err error
}

func (m *mockCompleter) Complete(ctx context.Context, messages []provider.Message, options *provider.CompleteOptions) (*provider.Completion, error) {
	if m.err != nil {
		return nil, m.err
	}

	return &provider.Completion{
		Model:  "served-model",
		Reason: provider.CompletionReasonStop,

		Usage: &provider.Usage{InputTokens: 10, OutputTokens: 5},
	}, nil
}

type mockExtractor struct{}

func (m *mockExtractor) Extract(ctx context.Context, file extractor.File, options *extractor.ExtractOptions) (*extractor.Document, error) {
	return &extractor.Document{Text: "hello", Pages: 2}, nil
}

type mockRasterizer struct{}

func (m *mockRasterizer) Rasterize(ctx context.Context, file rasterizer.File, options *rasterizer.RasterizeOptions) ([]rasterizer.Image, error) {
	return nil, errors.New("pdftoppm missing")
}

type mockCapabilities struct{}

func (m *mockCapabilities) Tools(ctx context.Context) ([]tool.Tool, error) {
	return []tool.Tool{{Name: "probe_pdf"}}, nil
}

func (m *mockCapabilities) Execute(ctx context.Context, state *document.State, call capability.Call) (capability.Output, document.Delta, error) {
	return capability.Output{"name": string(call.Name())}, document.Delta{}, nil
}

func TestCompleter(t *testing.T) {
	var _ Observable = NewCompleter("openai", "local-gguf", &mockCompleter{})

	completion, err := NewCompleter("openai", "local-gguf", &mockCompleter{}).Complete(context.Background(), nil, nil)
	require.NoError(t, err)
	require.Equal(t, "served-model", completion.Model)

	_, err = NewCompleter("openai", "local-gguf", &mockCompleter{err: provider.ErrRemote}).Complete(context.Background(), nil, nil)
	require.ErrorIs(t, err, provider.ErrRemote)
}

func TestExtractor(t *testing.T) {
	doc, err := NewExtractor("pdf", &mockExtractor{}).Extract(context.Background(), extractor.File{}, nil)
	require.NoError(t, err)
	require.Equal(t, 2, doc.Pages)
}

func TestRasterizer(t *testing.T) {
	_, err := NewRasterizer("poppler", &mockRasterizer{}).Rasterize(context.Background(), rasterizer.File{}, nil)
	require.ErrorContains(t, err, "pdftoppm")
}

func TestCapabilities(t *testing.T) {
	p := NewCapabilities("registry", &mockCapabilities{})

	tools, err := p.Tools(context.Background())
	require.NoError(t, err)
	require.Len(t, tools, 1)

	output, _, err := p.Execute(context.Background(), nil, capability.ProbeCall{})
	require.NoError(t, err)
	require.Equal(t, "probe_pdf", output["name"])
}

func TestUseGRPC(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_PROTOCOL", "")
	t.Setenv("OTEL_EXPORTER_OTLP_TRACES_PROTOCOL", "")
	t.Setenv("OTEL_EXPORTER_OTLP_LOGS_PROTOCOL", "")

	require.False(t, useGRPC("TRACES"))

	t.Setenv("OTEL_EXPORTER_OTLP_TRACES_PROTOCOL", "GRPC")
	require.True(t, useGRPC("TRACES"))
	require.False(t, useGRPC("LOGS"))

	t.Setenv("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc")
	require.True(t, useGRPC("LOGS"))
}
