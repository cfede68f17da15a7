package capability

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/adrianliechti/docagent/pkg/document"
	"github.com/adrianliechti/docagent/pkg/extractor"
	"github.com/adrianliechti/docagent/pkg/provider"
	"github.com/adrianliechti/docagent/pkg/rasterizer"
	"github.com/adrianliechti/docagent/pkg/schema"

	"github.com/stretchr/testify/require"
)

// mockExtractor implements extractor.Provider for testing
type mockExtractor struct {
	doc *extractor.Document
	err error

	// textErr fails only extractions that read text
	textErr error

	calls int
}

func (m *mockExtractor) Extract(ctx context.Context, input extractor.File, options *extractor.ExtractOptions) (*extractor.Document, error) {
	m.calls++

	if m.err != nil {
		return nil, m.err
	}

	if m.textErr != nil && (options == nil || !options.SkipText) {
		return nil, m.textErr
	}

	return m.doc, nil
}

// mockRasterizer implements rasterizer.Provider for testing
type mockRasterizer struct {
	pages int
	err   error

	options []*rasterizer.RasterizeOptions
}

func (m *mockRasterizer) Rasterize(ctx context.Context, input rasterizer.File, options *rasterizer.RasterizeOptions) ([]rasterizer.Image, error) {
	m.options = append(m.options, options)

	if m.err != nil {
		return nil, m.err
	}

	var result []rasterizer.Image

	for i := 0; i < m.pages && i < options.MaxPages; i++ {
		result = append(result, rasterizer.Image{
			Page:  i + 1,
			Width: options.Width,
			URL:   "data:image/jpeg;base64,/9g=",
		})
	}

	return result, nil
}

// mockCompleter implements provider.Completer for testing
type mockCompleter struct {
	content string
	err     error

	capturedMessages [][]provider.Message
	capturedOptions  []*provider.CompleteOptions
}

func (m *mockCompleter) Complete(ctx context.Context, messages []provider.Message, options *provider.CompleteOptions) (*provider.Completion, error) {
	m.capturedMessages = append(m.capturedMessages, messages)
	m.capturedOptions = append(m.capturedOptions, options)

	if m.err != nil {
		return nil, m.err
	}

	return &provider.Completion{
		Message: &provider.Message{
			Role:    provider.MessageRoleAssistant,
			Content: []provider.Content{provider.TextContent(m.content)},
		},
	}, nil
}

type fixture struct {
	extractor  *mockExtractor
	rasterizer *mockRasterizer

	text   *mockCompleter
	vision *mockCompleter

	registry *Registry
}

func newFixture(t *testing.T, options ...Option) *fixture {
	t.Helper()

	f := &fixture{
		extractor:  &mockExtractor{doc: &extractor.Document{}},
		rasterizer: &mockRasterizer{pages: 10},

		text:   &mockCompleter{content: "{}"},
		vision: &mockCompleter{content: "{}"},
	}

	options = append([]Option{
		WithExtractor(f.extractor),
		WithRasterizer(f.rasterizer),
		WithTextCompleter(f.text),
		WithVisionCompleter(f.vision),
	}, options...)

	r, err := New(options...)
	require.NoError(t, err)

	f.registry = r

	return f
}

func newPDF(options ...document.Option) *document.State {
	return document.New([]byte("%PDF-1.4 test"), append([]document.Option{document.WithName("invoice.pdf")}, options...)...)
}

func TestNew(t *testing.T) {
	_, err := New()
	require.ErrorContains(t, err, "missing extractor")

	_, err = New(WithExtractor(&mockExtractor{}))
	require.ErrorContains(t, err, "missing rasterizer")

	_, err = New(WithExtractor(&mockExtractor{}), WithRasterizer(&mockRasterizer{}))
	require.ErrorContains(t, err, "missing text completer")

	text := &mockCompleter{}

	r, err := New(WithExtractor(&mockExtractor{}), WithRasterizer(&mockRasterizer{}), WithTextCompleter(text))
	require.NoError(t, err)
	require.Same(t, text, r.vision)
}

func TestTools(t *testing.T) {
	f := newFixture(t)

	tools, err := f.registry.Tools(context.Background())
	require.NoError(t, err)
	require.Len(t, tools, len(Names))

	var names []Name

	for _, tool := range tools {
		names = append(names, Name(tool.Name))
		require.NotEmpty(t, tool.Description)
		require.Equal(t, "object", tool.Parameters["type"])
		require.NotNil(t, tool.Parameters["additionalProperties"])
	}

	require.ElementsMatch(t, Names, names)

	for _, tool := range tools {
		if tool.Name != string(Rasterize) {
			continue
		}

		properties := tool.Parameters["properties"].(map[string]any)
		maxPages := properties["max_pages"].(map[string]any)

		require.Equal(t, "integer", maxPages["type"])
		require.Equal(t, 1.0, maxPages["minimum"])
		require.Equal(t, 10.0, maxPages["maximum"])
		require.Equal(t, 3.0, maxPages["default"])
	}
}

func TestDecode(t *testing.T) {
	t.Run("unknown", func(t *testing.T) {
		_, err := Decode("delete_everything", "{}")
		require.ErrorIs(t, err, ErrUnknown)
	})

	t.Run("malformed arguments use defaults", func(t *testing.T) {
		call, err := Decode(string(Rasterize), "{not json")
		require.NoError(t, err)
		require.Equal(t, RasterizeCall{MaxPages: 3, DPI: 144, Width: 1024}, call)
	})

	t.Run("clamps out of range values", func(t *testing.T) {
		call, err := Decode(string(Rasterize), `{"max_pages": 50, "dpi": 10, "width": "4096"}`)
		require.NoError(t, err)
		require.Equal(t, RasterizeCall{MaxPages: 10, DPI: 72, Width: 2048}, call)
	})

	t.Run("clamps huge values to the maximum", func(t *testing.T) {
		call, err := Decode(string(Rasterize), `{"max_pages": 1e20, "dpi": -1e300, "width": 1e30}`)
		require.NoError(t, err)
		require.Equal(t, RasterizeCall{MaxPages: 10, DPI: 72, Width: 2048}, call)
	})

	t.Run("fractional values round", func(t *testing.T) {
		call, err := Decode(string(Rasterize), `{"max_pages": 2.6, "dpi": "150.2", "width": "wide"}`)
		require.NoError(t, err)
		require.Equal(t, RasterizeCall{MaxPages: 3, DPI: 150, Width: 1024}, call)
	})

	t.Run("raw json as object", func(t *testing.T) {
		call, err := Decode(string(NormalizeAndValidate), `{"raw_json": {"documentType": "invoice"}}`)
		require.NoError(t, err)
		require.Equal(t, NormalizeCall{RawJSON: `{"documentType":"invoice"}`}, call)
	})

	t.Run("vision images", func(t *testing.T) {
		call, err := Decode(string(VisionAnalyze), `{"images": ["a", 1, "b"]}`)
		require.NoError(t, err)
		require.Equal(t, VisionAnalyzeCall{Images: []string{"a", "b"}}, call)
	})

	t.Run("empty arguments", func(t *testing.T) {
		call, err := Decode(string(Probe), "")
		require.NoError(t, err)
		require.Equal(t, Probe, call.Name())
	})
}

func TestProbe(t *testing.T) {
	t.Run("text pdf", func(t *testing.T) {
		f := newFixture(t)
		f.extractor.doc = &extractor.Document{Text: "Račun 1/2024", Pages: 2}

		state := newPDF()

		output, delta, err := f.registry.Execute(context.Background(), state, ProbeCall{})
		require.NoError(t, err)

		require.Equal(t, Output{"page_count": 2, "has_text": true, "bytes_len": state.Size()}, output)
		require.Equal(t, 2, *delta.PageCount)
		require.True(t, *delta.HasText)
		require.Equal(t, "Račun 1/2024", *delta.Text)
	})

	t.Run("scanned pdf", func(t *testing.T) {
		f := newFixture(t)
		f.extractor.doc = &extractor.Document{Text: " \n\f ", Pages: 4}

		output, delta, err := f.registry.Execute(context.Background(), newPDF(), ProbeCall{})
		require.NoError(t, err)

		require.Equal(t, false, output["has_text"])
		require.Equal(t, 4, output["page_count"])
		require.Nil(t, delta.Text)
	})

	t.Run("malformed pdf degrades", func(t *testing.T) {
		f := newFixture(t)
		f.extractor.err = errors.New("xref table broken")

		output, delta, err := f.registry.Execute(context.Background(), newPDF(), ProbeCall{})
		require.NoError(t, err)

		require.Equal(t, 1, output["page_count"])
		require.Equal(t, false, output["has_text"])
		require.Equal(t, 1, *delta.PageCount)
		require.False(t, *delta.HasText)
	})

	t.Run("unreadable text keeps page count", func(t *testing.T) {
		f := newFixture(t)
		f.extractor.doc = &extractor.Document{Pages: 5}
		f.extractor.textErr = errors.New("malformed content stream")

		output, delta, err := f.registry.Execute(context.Background(), newPDF(), ProbeCall{})
		require.NoError(t, err)

		require.Equal(t, 5, output["page_count"])
		require.Equal(t, false, output["has_text"])
		require.Equal(t, 5, *delta.PageCount)
		require.Nil(t, delta.Text)
	})

	t.Run("unknown page count", func(t *testing.T) {
		f := newFixture(t)
		f.extractor.doc = &extractor.Document{Text: "x"}

		output, _, err := f.registry.Execute(context.Background(), newPDF(), ProbeCall{})
		require.NoError(t, err)
		require.Equal(t, 1, output["page_count"])
	})
}

func TestExtractText(t *testing.T) {
	f := newFixture(t)
	f.extractor.doc = &extractor.Document{Text: "Ukupno: 100,00", Pages: 1}

	output, delta, err := f.registry.Execute(context.Background(), newPDF(), ExtractTextCall{})
	require.NoError(t, err)
	require.Equal(t, Output{"chars": 14}, output)
	require.Equal(t, "Ukupno: 100,00", *delta.Text)

	f.extractor.err = errors.New("unreadable")

	_, _, err = f.registry.Execute(context.Background(), newPDF(), ExtractTextCall{})
	require.ErrorContains(t, err, "unreadable")
}

func TestRasterize(t *testing.T) {
	t.Run("limits pages and forwards size", func(t *testing.T) {
		f := newFixture(t)

		output, delta, err := f.registry.Execute(context.Background(), newPDF(document.WithMaxPages(10)), RasterizeCall{MaxPages: 3, DPI: 200, Width: 1024})
		require.NoError(t, err)

		require.Equal(t, Output{"count": 3}, output)
		require.Len(t, delta.Images, 3)
		require.Equal(t, &rasterizer.RasterizeOptions{MaxPages: 3, DPI: 200, Width: 1024}, f.rasterizer.options[0])
	})

	t.Run("request limit caps pages", func(t *testing.T) {
		f := newFixture(t)

		output, _, err := f.registry.Execute(context.Background(), newPDF(document.WithMaxPages(2)), RasterizeCall{MaxPages: 10, DPI: 144, Width: 1024})
		require.NoError(t, err)
		require.Equal(t, Output{"count": 2}, output)
	})

	t.Run("failure yields zero images", func(t *testing.T) {
		f := newFixture(t)
		f.rasterizer.err = errors.New("pdftoppm: exit status 1")

		state := newPDF()

		output, delta, err := f.registry.Execute(context.Background(), state, RasterizeCall{MaxPages: 3, DPI: 144, Width: 1024})
		require.NoError(t, err)
		require.Equal(t, Output{"count": 0}, output)
		require.NotNil(t, delta.Images)
		require.Empty(t, delta.Images)

		state.Apply(delta)
		require.NotNil(t, state.Images)
	})

	t.Run("image upload keeps prepared image", func(t *testing.T) {
		f := newFixture(t)

		state := document.New([]byte("\x89PNG\r\n\x1a\n"), document.WithContentType("image/png"))

		output, delta, err := f.registry.Execute(context.Background(), state, RasterizeCall{MaxPages: 3, DPI: 144, Width: 1024})
		require.NoError(t, err)
		require.Equal(t, Output{"count": 1}, output)
		require.True(t, delta.Empty())
		require.Empty(t, f.rasterizer.options)
	})
}

func TestTextAnalyze(t *testing.T) {
	t.Run("returns raw output", func(t *testing.T) {
		f := newFixture(t, WithTextLimit(5))
		f.text.content = `{"documentType": "invoice"`

		output, delta, err := f.registry.Execute(context.Background(), newPDF(), TextAnalyzeCall{Text: "ščćđž and more"})
		require.NoError(t, err)
		require.Equal(t, Output{"raw_json": `{"documentType": "invoice"`}, output)
		require.True(t, delta.Empty())

		require.Len(t, f.text.capturedMessages, 1)
		require.Empty(t, f.vision.capturedMessages)

		messages := f.text.capturedMessages[0]
		require.Equal(t, provider.MessageRoleSystem, messages[0].Role)
		require.True(t, strings.HasSuffix(messages[1].Text(), "ščćđž"))
		require.Contains(t, messages[1].Text(), "totalAmount")

		options := f.text.capturedOptions[0]
		require.Equal(t, provider.CompletionFormatJSON, options.Format)
		require.Equal(t, float32(0.2), *options.Temperature)
		require.Nil(t, options.Schema)
		require.Nil(t, options.MaxTokens)
	})

	t.Run("structured output", func(t *testing.T) {
		f := newFixture(t, WithStructuredOutput(true), WithMaxTokens(2048))

		_, _, err := f.registry.Execute(context.Background(), newPDF(), TextAnalyzeCall{Text: "Račun br. 7"})
		require.NoError(t, err)

		options := f.text.capturedOptions[0]
		require.NotNil(t, options.Schema)
		require.Equal(t, "document", options.Schema.Name)
		require.Equal(t, schema.Document(), options.Schema.Schema)
		require.Equal(t, 2048, *options.MaxTokens)
	})

	t.Run("empty text aborts", func(t *testing.T) {
		f := newFixture(t)

		_, _, err := f.registry.Execute(context.Background(), newPDF(), TextAnalyzeCall{Text: "  "})
		require.ErrorIs(t, err, ErrPrecondition)
		require.Empty(t, f.text.capturedMessages)
	})

	t.Run("remote failure", func(t *testing.T) {
		f := newFixture(t)
		f.text.err = provider.ErrRemote

		_, _, err := f.registry.Execute(context.Background(), newPDF(), TextAnalyzeCall{Text: "x"})
		require.ErrorIs(t, err, provider.ErrRemote)
	})
}

func TestVisionAnalyze(t *testing.T) {
	t.Run("sends images", func(t *testing.T) {
		f := newFixture(t)
		f.vision.content = `{"documentType": "quote"}`

		output, _, err := f.registry.Execute(context.Background(), newPDF(), VisionAnalyzeCall{Images: []string{
			"data:image/jpeg;base64,/9g=",
			"data:image/png;base64,iVBORw==",
		}})

		require.NoError(t, err)
		require.Equal(t, Output{"raw_json": `{"documentType": "quote"}`}, output)
		require.Empty(t, f.text.capturedMessages)

		content := f.vision.capturedMessages[0][1].Content
		require.Len(t, content, 3)
		require.Equal(t, "image/jpeg", content[1].File.ContentType)
		require.Equal(t, []byte{0xff, 0xd8}, content[1].File.Content)
		require.Equal(t, "image/png", content[2].File.ContentType)
	})

	t.Run("no images aborts", func(t *testing.T) {
		f := newFixture(t)

		_, _, err := f.registry.Execute(context.Background(), newPDF(), VisionAnalyzeCall{})
		require.ErrorIs(t, err, ErrPrecondition)
		require.Empty(t, f.vision.capturedMessages)
	})

	t.Run("invalid image aborts", func(t *testing.T) {
		f := newFixture(t)

		_, _, err := f.registry.Execute(context.Background(), newPDF(), VisionAnalyzeCall{Images: []string{"not a url"}})
		require.ErrorIs(t, err, ErrPrecondition)
	})
}

func TestNormalizeAndValidate(t *testing.T) {
	t.Run("brace repair", func(t *testing.T) {
		f := newFixture(t)

		raw := `Here is the result: {"documentType":"invoice","items":[],"totals":{"totalAmount":100}} Thanks!`

		output, delta, err := f.registry.Execute(context.Background(), newPDF(), NormalizeCall{RawJSON: raw})
		require.NoError(t, err)
		require.Equal(t, Output{"ok": true}, output)
		require.NotNil(t, delta.Result)
		require.Equal(t, document.DocumentTypeInvoice, delta.Result.DocumentType)
		require.Equal(t, 100.0, *delta.Result.Totals.TotalAmount)
	})

	t.Run("normalizes locale values", func(t *testing.T) {
		f := newFixture(t)

		raw := `{"documentType":"quote","date":"01.02.2024.","items":[{"description":"Rad","quantity":"2","unit":"h","unitPrice":"1.250,00","totalPrice":"2.500,00"}],"totals":{"totalAmount":"3.125,00"}}`

		output, delta, err := f.registry.Execute(context.Background(), newPDF(), NormalizeCall{RawJSON: raw})
		require.NoError(t, err)
		require.Equal(t, true, output["ok"])

		record := delta.Result
		require.Equal(t, "2024-02-01", *record.Date)
		require.Equal(t, 1250.0, *record.Items[0].UnitPrice)
		require.Equal(t, 3125.0, *record.Totals.TotalAmount)
	})

	t.Run("schema violation", func(t *testing.T) {
		f := newFixture(t)

		output, delta, err := f.registry.Execute(context.Background(), newPDF(), NormalizeCall{RawJSON: `{"documentType":"invoice","items":[],"totals":{}}`})
		require.NoError(t, err)
		require.Equal(t, false, output["ok"])
		require.Contains(t, output["error"], "totalAmount")
		require.LessOrEqual(t, len([]rune(output["error"].(string))), 200)
		require.NotNil(t, output["partial"])
		require.Nil(t, delta.Result)
	})

	t.Run("unparseable", func(t *testing.T) {
		f := newFixture(t)

		output, delta, err := f.registry.Execute(context.Background(), newPDF(), NormalizeCall{RawJSON: "no json here"})
		require.NoError(t, err)
		require.Equal(t, false, output["ok"])
		require.Contains(t, output["error"], "invalid json")
		require.NotContains(t, output, "partial")
		require.Nil(t, delta.Result)
	})

	t.Run("not an object", func(t *testing.T) {
		f := newFixture(t)

		output, _, err := f.registry.Execute(context.Background(), newPDF(), NormalizeCall{RawJSON: "[1, 2]"})
		require.NoError(t, err)
		require.Equal(t, false, output["ok"])
	})
}

func TestExecuteUnknown(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.registry.Execute(context.Background(), newPDF(), nil)
	require.ErrorIs(t, err, ErrUnknown)
}
