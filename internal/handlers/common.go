package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/lehigh-university-libraries/slideshow/internal/export"
	"github.com/lehigh-university-libraries/slideshow/internal/render"
	"github.com/lehigh-university-libraries/slideshow/internal/slides"
	"github.com/lehigh-university-libraries/slideshow/internal/storage"
	"github.com/lehigh-university-libraries/slideshow/internal/surface"
)

type Handler struct {
	ctx           context.Context
	registry      *slides.Registry
	pipeline      *export.Pipeline
	artifactStore *storage.ArtifactStore
	renderer      *render.Renderer
	fetcher       surface.Fetcher
}

// New creates the HTTP handler. Exports started over HTTP run under ctx so
// they outlive the request that started them.
func New(ctx context.Context, registry *slides.Registry, pipeline *export.Pipeline, store *storage.ArtifactStore, renderer *render.Renderer, fetcher surface.Fetcher) *Handler {
	return &Handler{
		ctx:           ctx,
		registry:      registry,
		pipeline:      pipeline,
		artifactStore: store,
		renderer:      renderer,
		fetcher:       fetcher,
	}
}

// Routes registers every endpoint on mux.
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/api/slides", h.HandleSlides)
	mux.HandleFunc("/api/slides/", h.HandleSlidePreview)
	mux.HandleFunc("/api/export", h.HandleExport)
	mux.HandleFunc("/api/export/", h.HandleExportDownload)
	mux.HandleFunc("/", h.HandleStatic)
	mux.HandleFunc("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			slog.Error("Unable to write healthcheck", "err", err)
		}
	})
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data any) {
	h.writeJSONStatus(w, data, http.StatusOK)
}

func (h *Handler) writeJSONStatus(w http.ResponseWriter, data any, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	slog.Error(message)
	http.Error(w, message, code)
}
