package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/lehigh-university-libraries/slideshow/internal/export"
	"github.com/lehigh-university-libraries/slideshow/internal/storage"
)

type exportStatus struct {
	Job       export.Job          `json:"job"`
	Last      *export.Job         `json:"last,omitempty"`
	Artifacts []*storage.Artifact `json:"artifacts"`
}

// HandleExport starts an export on POST and reports the job on GET.
func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		status := exportStatus{
			Job:       h.pipeline.Job(),
			Artifacts: h.artifactStore.GetAll(),
		}
		if last, ok := h.pipeline.Last(); ok {
			status.Last = &last
		}
		h.writeJSON(w, status)
	case "POST":
		job, done, err := h.pipeline.Start(h.ctx, h.registry.Records())
		if errors.Is(err, export.ErrExportInProgress) {
			h.writeJSONStatus(w, h.pipeline.Job(), http.StatusConflict)
			return
		}
		if err != nil {
			h.writeError(w, "Failed to start export: "+err.Error(), http.StatusInternalServerError)
			return
		}

		go func() {
			out := <-done
			if out.Err != nil {
				return
			}
			slog.Info("Export available for download", "job_id", job.ID, "url", "/api/export/"+out.Result.Location)
		}()

		w.Header().Set("Location", "/api/export/"+job.ID)
		h.writeJSONStatus(w, job, http.StatusAccepted)
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleExportDownload serves the document produced by job {id}.
func (h *Handler) HandleExportDownload(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/export/")
	artifact, ok := h.artifactStore.Get(id)
	if !ok {
		if job := h.pipeline.Job(); job.ID == id {
			h.writeJSONStatus(w, job, http.StatusAccepted)
			return
		}
		h.writeError(w, "Export not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", artifact.Name))
	w.Header().Set("Content-Length", strconv.Itoa(artifact.Size))
	if _, err := w.Write(artifact.Data); err != nil {
		slog.Error("Unable to write export", "job_id", id, "err", err)
	}
}
