package httpadapter

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ducktyper-ai/quackverse-sub003/internal/config"
	"github.com/ducktyper-ai/quackverse-sub003/internal/core/domain"
)

func TestGetConversionReturnsJobState(t *testing.T) {
	handler, deps := newTestHandler(t, config.Config{})
	deps.jobs.jobs["job-1"] = &domain.ConversionJob{
		ID:           "job-1",
		SourcePath:   "uploads/job-1_report.html",
		SourceFormat: domain.FormatHTML,
		TargetFormat: domain.FormatMarkdown,
		Status:       domain.JobSucceeded,
		Attempts:     1,
		OutputBytes:  512,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/conversions/job-1", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	var job domain.ConversionJob
	if err := json.NewDecoder(res.Body).Decode(&job); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if job.Status != domain.JobSucceeded || job.Attempts != 1 {
		t.Fatalf("unexpected job state: %+v", job)
	}
}

func TestGetConversionReturns404ForUnknownJob(t *testing.T) {
	handler, _ := newTestHandler(t, config.Config{})

	req := httptest.NewRequest(http.MethodGet, "/v1/conversions/missing", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.Code)
	}
}

func TestGetBatchReturnsBatchState(t *testing.T) {
	handler, deps := newTestHandler(t, config.Config{})
	deps.batches.batches["batch-1"] = &domain.ConversionBatch{
		ID:           "batch-1",
		SourceDir:    "/docs",
		Pattern:      "*.html",
		TargetFormat: domain.FormatMarkdown,
		Status:       domain.BatchPartial,
		Requested:    5,
		Succeeded:    3,
		Failed:       2,
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/batches/batch-1", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	var batch domain.ConversionBatch
	if err := json.NewDecoder(res.Body).Decode(&batch); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if batch.Status != domain.BatchPartial || batch.Succeeded != 3 {
		t.Fatalf("unexpected batch state: %+v", batch)
	}
}

func TestGetBatchReturns404ForUnknownBatch(t *testing.T) {
	handler, _ := newTestHandler(t, config.Config{})

	req := httptest.NewRequest(http.MethodGet, "/v1/batches/missing", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.Code)
	}
}

func TestGetConversionRejectsEmptyID(t *testing.T) {
	handler, _ := newTestHandler(t, config.Config{})

	req := httptest.NewRequest(http.MethodGet, "/v1/conversions/", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}
