package api

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/adrianliechti/docagent/pkg/capability"
	"github.com/adrianliechti/docagent/pkg/provider"
)

const maxUploadSize = 32 << 20

func valueMaxPages(r *http.Request, fallback int) (int, error) {
	val := r.FormValue("max_pages")

	if val == "" {
		return fallback, nil
	}

	pages, err := strconv.Atoi(strings.TrimSpace(val))

	if err != nil {
		return 0, fmt.Errorf("invalid max_pages: %q", val)
	}

	if pages < capability.MinPages || pages > capability.MaxPages {
		return 0, fmt.Errorf("max_pages must be between %d and %d", capability.MinPages, capability.MaxPages)
	}

	return pages, nil
}

func (h *Handler) readFile(r *http.Request) (*provider.File, error) {
	if file, header, err := r.FormFile("file"); err == nil {
		defer file.Close()

		data, err := io.ReadAll(file)

		if err != nil {
			return nil, err
		}

		return &provider.File{
			Name: header.Filename,

			Content:     data,
			ContentType: header.Header.Get("Content-Type"),
		}, nil
	}

	contentType := r.Header.Get("Content-Type")

	if strings.HasPrefix(contentType, "multipart/") {
		return nil, fmt.Errorf("missing form file %q", "file")
	}

	contentDisposition := r.Header.Get("Content-Disposition")

	_, params, _ := mime.ParseMediaType(contentDisposition)

	filename := params["filename*"]
	filename = strings.TrimPrefix(filename, "UTF-8''")
	filename = strings.TrimPrefix(filename, "utf-8''")

	if filename == "" {
		filename = params["filename"]
	}

	data, err := io.ReadAll(r.Body)

	if err != nil {
		return nil, err
	}

	return &provider.File{
		Name: filename,

		Content:     data,
		ContentType: contentType,
	}, nil
}
