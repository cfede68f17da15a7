package capability

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/adrianliechti/docagent/pkg/document"
	"github.com/adrianliechti/docagent/pkg/extractor"
	"github.com/adrianliechti/docagent/pkg/rasterizer"
)

// probe never fails; unreadable documents report one page without text.
func (r *Registry) probe(ctx context.Context, state *document.State, call Call) (Output, document.Delta, error) {
	pages := 1
	hasText := false

	delta := document.Delta{
		PageCount: &pages,
		HasText:   &hasText,
	}

	// pages are counted separately so a text layer the reader cannot
	// parse does not lose the page count
	if doc, err := r.extractor.Extract(ctx, file(state), &extractor.ExtractOptions{SkipText: true}); err != nil {
		slog.WarnContext(ctx, "capability.probe.pages.failed", "error", err)
	} else if doc.Pages > 0 {
		pages = doc.Pages
	}

	doc, err := r.extractor.Extract(ctx, file(state), nil)

	if err != nil {
		slog.WarnContext(ctx, "capability.probe.failed", "error", err)
	} else {
		if pages == 1 && doc.Pages > 0 {
			pages = doc.Pages
		}

		if strings.TrimSpace(doc.Text) != "" {
			hasText = true

			text := doc.Text
			delta.Text = &text
		}
	}

	output := Output{
		"page_count": pages,
		"has_text":   hasText,
		"bytes_len":  state.Size(),
	}

	return output, delta, nil
}

func (r *Registry) extractText(ctx context.Context, state *document.State, call Call) (Output, document.Delta, error) {
	doc, err := r.extractor.Extract(ctx, file(state), nil)

	if err != nil {
		return nil, document.Delta{}, fmt.Errorf("extract text: %w", err)
	}

	text := doc.Text

	delta := document.Delta{
		Text: &text,
	}

	if doc.Pages > 0 {
		pages := doc.Pages
		delta.PageCount = &pages
	}

	return Output{"chars": len([]rune(text))}, delta, nil
}

// rasterize reports zero images instead of failing.
func (r *Registry) rasterize(ctx context.Context, state *document.State, call Call) (Output, document.Delta, error) {
	c, ok := call.(RasterizeCall)

	if !ok {
		return nil, document.Delta{}, fmt.Errorf("%w: unexpected call %T", ErrUnknown, call)
	}

	// images of non pdf uploads are prepared up front
	if !state.IsPDF {
		return Output{"count": len(state.Images)}, document.Delta{}, nil
	}

	maxPages := c.MaxPages

	if state.MaxPages > 0 && maxPages > state.MaxPages {
		maxPages = state.MaxPages
	}

	images, err := r.rasterizer.Rasterize(ctx, file(state), &rasterizer.RasterizeOptions{
		MaxPages: maxPages,

		DPI:   c.DPI,
		Width: c.Width,
	})

	if err != nil {
		slog.WarnContext(ctx, "capability.rasterize.failed", "error", err)
		images = nil
	}

	urls := rasterizer.URLs(images)

	return Output{"count": len(urls)}, document.Delta{Images: urls}, nil
}
