package api

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/pogen/internal/parser"
	"github.com/dgallion1/pogen/internal/pipeline"
)

// handleConvert accepts a MOM document and a PO template and queues an
// asynchronous conversion.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	// Limit total request size: two uploads plus form overhead.
	r.Body = http.MaxBytesReader(w, r.Body, 2*s.cfg.MaxUploadBytes+1024*1024)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	momName, momData, err := s.formFile(r, "mom")
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !parser.IsSupportedExtension(momName) {
		jsonError(w, fmt.Sprintf("unsupported MOM file type: %s", filepath.Ext(momName)), http.StatusBadRequest)
		return
	}

	tmplName, tmplData, err := s.formFile(r, "template")
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !strings.EqualFold(filepath.Ext(tmplName), ".docx") {
		jsonError(w, "template must be a .docx file", http.StatusBadRequest)
		return
	}

	job := &pipeline.Job{
		ID:               pipeline.NewJobID(momName, tmplName),
		Status:           pipeline.StatusQueued,
		Phase:            "queued",
		MOMFilename:      momName,
		TemplateFilename: tmplName,
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}
	job.SetInputs(momData, tmplData)

	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{
		"job_id":   job.ID,
		"status":   job.Status,
		"poll_url": fmt.Sprintf("/api/convert/%s/status", job.ID),
	})
}

func (s *Server) handleConvertStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	snap := job.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(snap)
}

// handleConvertResult streams the finished PO document.
func (s *Server) handleConvertResult(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	output := job.Output()
	if output == nil {
		snap := job.Snapshot()
		if snap.Status == pipeline.StatusFailed {
			jsonError(w, "conversion failed", http.StatusUnprocessableEntity)
			return
		}
		jsonError(w, "conversion not finished", http.StatusConflict)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.wordprocessingml.document")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", job.OutputName()))
	w.Write(output)
}

// formFile reads one named upload, enforcing the size limit.
func (s *Server) formFile(r *http.Request, field string) (string, []byte, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return "", nil, fmt.Errorf("%s file is required: %w", field, err)
	}
	defer file.Close()

	data, err := readLimited(file, s.cfg.MaxUploadBytes)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", field, err)
	}
	return sanitizeFilename(header.Filename), data, nil
}

func readLimited(file multipart.File, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload")
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("file exceeds max size (%d bytes)", limit)
	}
	return data, nil
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
