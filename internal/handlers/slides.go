package handlers

import (
	"bytes"
	"image/png"
	"net/http"
	"strconv"
	"strings"

	"github.com/lehigh-university-libraries/slideshow/internal/render"
	"github.com/lehigh-university-libraries/slideshow/internal/slides"
)

type slidesResponse struct {
	Title  string          `json:"title"`
	Count  int             `json:"count"`
	Slides []slides.Record `json:"slides"`
}

func (h *Handler) HandleSlides(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		h.writeJSON(w, slidesResponse{
			Title:  h.registry.Title(),
			Count:  h.registry.Len(),
			Slides: h.registry.Records(),
		})
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleSlidePreview renders /api/slides/{index}.png. Without t the slide is
// drawn settled; t in [0, 1] draws the entrance animation at that progress.
func (h *Handler) HandleSlidePreview(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	name := strings.TrimPrefix(r.URL.Path, "/api/slides/")
	index, err := strconv.Atoi(strings.TrimSuffix(name, ".png"))
	if err != nil || !strings.HasSuffix(name, ".png") {
		h.writeError(w, "Slide not found", http.StatusNotFound)
		return
	}
	if index < 0 || index >= h.registry.Len() {
		h.writeError(w, "Slide not found", http.StatusNotFound)
		return
	}

	mode := render.StaticMode
	if v := r.URL.Query().Get("t"); v != "" {
		t, err := strconv.ParseFloat(v, 64)
		if err != nil || t < 0 || t > 1 {
			h.writeError(w, "t must be a number in [0, 1]", http.StatusBadRequest)
			return
		}
		mode = render.Mode{Progress: t}
	}

	scale := 0.5
	if v := r.URL.Query().Get("scale"); v != "" {
		scale, err = strconv.ParseFloat(v, 64)
		if err != nil || scale <= 0 || scale > render.MaxScale {
			h.writeError(w, "Invalid scale", http.StatusBadRequest)
			return
		}
	}

	rec := h.registry.At(index)
	images := render.ImageMap{}
	for _, ref := range rec.ImageRefs() {
		img, err := h.fetcher.Fetch(r.Context(), ref)
		if err != nil {
			continue
		}
		images[ref] = img
	}

	img, err := h.renderer.Render(rec, mode, images, scale)
	if err != nil {
		h.writeError(w, "Failed to render slide: "+err.Error(), http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		h.writeError(w, "Failed to encode slide: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.writeError(w, "Unable to write slide", http.StatusInternalServerError)
	}
}
