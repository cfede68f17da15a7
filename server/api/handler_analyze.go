package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/adrianliechti/docagent/pkg/chain/agent"
	"github.com/adrianliechti/docagent/pkg/document"
)

var errNoResult = errors.New("no result")

func (h *Handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	maxPages, err := valueMaxPages(r, h.maxPages)

	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	file, err := h.readFile(r)

	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if len(file.Content) == 0 {
		writeError(w, http.StatusBadRequest, errors.New("empty file"))
		return
	}

	state := document.New(file.Content,
		document.WithName(file.Name),
		document.WithContentType(file.ContentType),
		document.WithMaxPages(maxPages),
	)

	slog.InfoContext(r.Context(), "analyze.request", "name", file.Name, "content_type", state.ContentType, "pdf", state.IsPDF, "bytes", state.Size(), "max_pages", maxPages)

	result, err := h.analyzer.Run(r.Context(), state)

	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	if result.Status != agent.StatusCompleted || result.Record == nil {
		writeError(w, http.StatusUnprocessableEntity, errNoResult)
		return
	}

	writeJson(w, result.Record)
}
