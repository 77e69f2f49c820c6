package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/Pranjal6955/TrendCatcherEngine/internal/jobs"
	"github.com/Pranjal6955/TrendCatcherEngine/pkg/api"
)

// TriggerScrape handles POST /jobs/scrape.
// The run executes in the background; a run already in flight yields 409.
// The optional body overrides the run tuning for this run only.
func (h *Handlers) TriggerScrape(w http.ResponseWriter, r *http.Request) {
	var req api.TriggerJobRequest
	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
			h.httpError(w, "Invalid request body", http.StatusBadRequest)
			return
		}
	}

	opts := jobs.Options{
		BatchSize:      req.BatchSize,
		BatchDelay:     time.Duration(req.BatchDelayMs) * time.Millisecond,
		MaxRetries:     req.MaxRetries,
		RetryBaseDelay: time.Duration(req.RetryBaseDelayMs) * time.Millisecond,
	}

	// The run must outlive this request.
	if !h.guard.TriggerAsync(context.Background(), opts) {
		h.respondJson(w, http.StatusConflict, api.TriggerJobResponse{
			Triggered: false,
			Message:   "A scrape run is already in progress",
		})
		return
	}

	h.respondJson(w, http.StatusAccepted, api.TriggerJobResponse{
		Triggered: true,
		Message:   "Scrape run started",
	})
}

// JobStatus handles GET /jobs/status.
func (h *Handlers) JobStatus(w http.ResponseWriter, r *http.Request) {
	status := h.guard.Status()

	resp := api.JobStatusResponse{
		Running:   status.IsRunning,
		Schedule:  status.Schedule,
		StartedAt: status.StartedAt,
		LastRunAt: status.LastRunAt,
		TotalRuns: status.TotalRuns,
		History:   make([]api.JobRunRecord, 0, len(status.RecentHistory)),
	}
	for _, rec := range status.RecentHistory {
		entry := api.JobRunRecord{
			StartedAt: rec.RunAt,
			Duration:  rec.Duration.String(),
			Total:     rec.TotalProducts,
			Error:     rec.Error,
		}
		if rec.Summary != nil {
			entry.Success = rec.Summary.Success
			entry.Failed = rec.Summary.Failed
			entry.Skipped = rec.Summary.Skipped
			entry.Retried = rec.Summary.Retried
		}
		resp.History = append(resp.History, entry)
	}
	h.respondJson(w, http.StatusOK, resp)
}
