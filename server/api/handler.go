package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/adrianliechti/docagent/config"
	"github.com/adrianliechti/docagent/pkg/chain/agent"
	"github.com/adrianliechti/docagent/pkg/document"

	"github.com/go-chi/chi/v5"
)

const serviceName = "docagent"

// errorLimit bounds the error text returned to clients.
const errorLimit = 300

type Analyzer interface {
	Run(ctx context.Context, state *document.State) (*agent.Result, error)
}

type Handler struct {
	analyzer Analyzer

	version  string
	maxPages int
}

func New(cfg *config.Config) (*Handler, error) {
	h := &Handler{
		analyzer: cfg.Agent(),

		version:  cfg.Version,
		maxPages: cfg.MaxPages,
	}

	return h, nil
}

func (h *Handler) Attach(r chi.Router) {
	r.Get("/health", h.handleHealth)

	r.Post("/agent/analyze-file", h.handleAnalyze)
}

func writeJson(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	enc.Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	text := http.StatusText(code)

	if err != nil {
		text = err.Error()
	}

	if runes := []rune(text); len(runes) > errorLimit {
		text = string(runes[:errorLimit])
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	json.NewEncoder(w).Encode(ErrorResponse{
		Error: text,
	})
}
