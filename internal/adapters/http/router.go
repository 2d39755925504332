package httpadapter

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ducktyper-ai/quackverse-sub003/internal/config"
	"github.com/ducktyper-ai/quackverse-sub003/internal/core/domain"
	"github.com/ducktyper-ai/quackverse-sub003/internal/core/ports"
	"github.com/ducktyper-ai/quackverse-sub003/internal/observability/metrics"
)

const (
	serviceName      = "api"
	backpressureWait = 500 * time.Millisecond
)

type Router struct {
	cfg         config.Config
	submitUC    ports.ConversionSubmitter
	statusUC    ports.ConversionReader
	httpMetrics *metrics.HTTPServerMetrics
	validator   *specValidator
}

func NewRouter(
	cfg config.Config,
	submitUC ports.ConversionSubmitter,
	statusUC ports.ConversionReader,
	httpMetrics *metrics.HTTPServerMetrics,
) (*Router, error) {
	validator, err := newSpecValidator()
	if err != nil {
		return nil, fmt.Errorf("openapi validator: %w", err)
	}
	return &Router{
		cfg:         cfg,
		submitUC:    submitUC,
		statusUC:    statusUC,
		httpMetrics: httpMetrics,
		validator:   validator,
	}, nil
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/openapi.yaml", rt.openapiSpec)
	mux.HandleFunc("/v1/conversions", rt.submitConversion)
	mux.HandleFunc("/v1/conversions/", rt.getConversionByID)
	mux.HandleFunc("/v1/batches", rt.submitBatch)
	mux.HandleFunc("/v1/batches/", rt.getBatchByID)

	var handler http.Handler = rt.validator.middleware(mux)
	if rt.cfg.APIMaxConcurrent > 0 {
		handler = backpressureMiddleware(handler, rt.cfg.APIMaxConcurrent, backpressureWait)
	}
	if rt.cfg.APIRateLimitRPS > 0 {
		handler = rateLimitMiddleware(handler, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst)
	}
	if rt.httpMetrics != nil {
		handler = rt.httpMetrics.Middleware(serviceName, handler)
	}
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) submitConversion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	if rt.cfg.APIMaxUploadMB > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, rt.cfg.APIMaxUploadMB<<20)
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{
				"error": fmt.Sprintf("upload exceeds the %d MB limit", rt.cfg.APIMaxUploadMB),
			})
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	targetFormat := domain.FormatForExtension(strings.TrimSpace(r.FormValue("target_format")))

	job, err := rt.submitUC.SubmitFile(r.Context(), fileHeader.Filename, targetFormat, file)
	if err != nil {
		rt.recordRejection(err)
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}

	rt.recordSubmission("file", string(job.TargetFormat))
	writeJSON(w, http.StatusAccepted, job)
}

func (rt *Router) getConversionByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/v1/conversions/")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "job id is required"})
		return
	}

	job, err := rt.statusUC.GetJob(r.Context(), id)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (rt *Router) submitBatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		SourceDir    string `json:"source_dir"`
		Pattern      string `json:"pattern"`
		Recursive    bool   `json:"recursive"`
		TargetFormat string `json:"target_format"`
		OutputDir    string `json:"output_dir"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	batch, err := rt.submitUC.SubmitBatch(r.Context(), &domain.ConversionBatch{
		SourceDir:    strings.TrimSpace(req.SourceDir),
		Pattern:      strings.TrimSpace(req.Pattern),
		Recursive:    req.Recursive,
		TargetFormat: domain.FormatForExtension(strings.TrimSpace(req.TargetFormat)),
		OutputDir:    strings.TrimSpace(req.OutputDir),
	})
	if err != nil {
		rt.recordRejection(err)
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}

	rt.recordSubmission("batch", string(batch.TargetFormat))
	writeJSON(w, http.StatusAccepted, batch)
}

func (rt *Router) getBatchByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/v1/batches/")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "batch id is required"})
		return
	}

	batch, err := rt.statusUC.GetBatch(r.Context(), id)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, batch)
}

func (rt *Router) recordSubmission(kind, targetFormat string) {
	if rt.httpMetrics == nil {
		return
	}
	rt.httpMetrics.RecordSubmission(serviceName, kind, targetFormat)
}

func (rt *Router) recordRejection(err error) {
	if rt.httpMetrics == nil {
		return
	}
	rt.httpMetrics.RecordRejection(serviceName, domain.ErrorKindName(err))
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
