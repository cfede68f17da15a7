package pdf

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/adrianliechti/docagent/pkg/extractor"
	"github.com/adrianliechti/docagent/pkg/text"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

var _ extractor.Provider = &Extractor{}

type Extractor struct {
}

func New() (*Extractor, error) {
	return &Extractor{}, nil
}

func (e *Extractor) Extract(ctx context.Context, input extractor.File, options *extractor.ExtractOptions) (*extractor.Document, error) {
	if options == nil {
		options = new(extractor.ExtractOptions)
	}

	if !isPDF(input) {
		return nil, extractor.ErrUnsupported
	}

	result := &extractor.Document{}

	pages, err := countPages(input.Content)

	if err != nil {
		slog.DebugContext(ctx, "pdf.pagecount.failed", "error", err)
	}

	result.Pages = pages

	if options.SkipText {
		return result, nil
	}

	raw, numPages, err := readText(input.Content)

	if err != nil {
		return nil, err
	}

	result.Text = text.Normalize(raw)

	if result.Pages == 0 {
		result.Pages = numPages
	}

	return result, nil
}

func isPDF(input extractor.File) bool {
	if input.ContentType == "application/pdf" || strings.HasSuffix(strings.ToLower(input.Name), ".pdf") {
		return true
	}

	return bytes.HasPrefix(bytes.TrimLeft(input.Content, " \t\r\n"), []byte("%PDF-"))
}

func countPages(content []byte) (int, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	return api.PageCount(bytes.NewReader(content), conf)
}

// the pdf reader panics on some malformed streams
func readText(content []byte) (text string, pages int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("read pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))

	if err != nil {
		return "", 0, fmt.Errorf("read pdf: %w", err)
	}

	pages = reader.NumPage()

	var b strings.Builder

	for i := 1; i <= pages; i++ {
		page := reader.Page(i)

		if page.V.IsNull() {
			continue
		}

		val, err := page.GetPlainText(nil)

		if err != nil {
			return "", pages, fmt.Errorf("read page %d: %w", i, err)
		}

		if b.Len() > 0 && val != "" {
			b.WriteString("\n")
		}

		b.WriteString(val)
	}

	return b.String(), pages, nil
}
