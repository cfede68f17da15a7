package pdf

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/adrianliechti/docagent/pkg/extractor"

	"github.com/stretchr/testify/require"
)

// buildPDF writes a minimal single font PDF with one text line per page.
func buildPDF(pages ...string) []byte {
	var objects []string

	count := len(pages)

	kids := ""

	for i := range pages {
		kids += fmt.Sprintf("%d 0 R ", 4+i*2)
	}

	objects = append(objects,
		"<< /Type /Catalog /Pages 2 0 R >>",
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", kids, count),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
	)

	for i, text := range pages {
		stream := ""

		if text != "" {
			stream = fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
		}

		objects = append(objects,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", 5+i*2),
			fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream),
		)
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")

	offsets := make([]int, len(objects))

	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()

	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)

	for _, offset := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offset)
	}

	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)

	return buf.Bytes()
}

func TestExtractText(t *testing.T) {
	e, err := New()
	require.NoError(t, err)

	doc, err := e.Extract(context.Background(), extractor.File{
		Name:    "invoice.pdf",
		Content: buildPDF("Invoice 42", "Total 100"),
	}, nil)

	require.NoError(t, err)
	require.Equal(t, 2, doc.Pages)
	require.Contains(t, doc.Text, "Invoice 42")
	require.Contains(t, doc.Text, "Total 100")
}

func TestExtractScanned(t *testing.T) {
	e, err := New()
	require.NoError(t, err)

	doc, err := e.Extract(context.Background(), extractor.File{
		ContentType: "application/pdf",
		Content:     buildPDF("", "", ""),
	}, nil)

	require.NoError(t, err)
	require.Equal(t, 3, doc.Pages)
	require.Empty(t, doc.Text)
}

func TestExtractSkipText(t *testing.T) {
	e, err := New()
	require.NoError(t, err)

	doc, err := e.Extract(context.Background(), extractor.File{
		Content: buildPDF("a", "b", "c", "d"),
	}, &extractor.ExtractOptions{SkipText: true})

	require.NoError(t, err)
	require.Equal(t, 4, doc.Pages)
	require.Empty(t, doc.Text)
}

func TestExtractUnsupported(t *testing.T) {
	e, err := New()
	require.NoError(t, err)

	_, err = e.Extract(context.Background(), extractor.File{
		Name:    "scan.png",
		Content: []byte("\x89PNG\r\n\x1a\n"),
	}, nil)

	require.ErrorIs(t, err, extractor.ErrUnsupported)
}

func TestExtractMalformed(t *testing.T) {
	e, err := New()
	require.NoError(t, err)

	_, err = e.Extract(context.Background(), extractor.File{
		Name:    "broken.pdf",
		Content: []byte("%PDF-1.4\nthis is not a pdf"),
	}, nil)

	require.Error(t, err)
}
