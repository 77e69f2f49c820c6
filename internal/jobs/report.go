// Package jobs contains the batch scrape job runner and the schedule
// guard that drives it periodically.
package jobs

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Pranjal6955/TrendCatcherEngine/internal/watchdog"
)

// ResultStatus is the outcome class of one product within a job run.
type ResultStatus string

const (
	ResultSuccess ResultStatus = "SUCCESS"
	ResultFailed  ResultStatus = "FAILED"
	ResultSkipped ResultStatus = "SKIPPED"
)

// ProductResult is the typed outcome of processing one product. Every
// failure path resolves to one of these; processing never surfaces an
// error to the batch.
type ProductResult struct {
	ProductID uuid.UUID    `json:"product_id"`
	Name      string       `json:"name"`
	Status    ResultStatus `json:"status"`

	// Reason explains a SKIPPED result, Error a FAILED one.
	Reason string `json:"reason,omitempty"`
	Error  string `json:"error,omitempty"`

	Attempts int           `json:"attempts"`
	Duration time.Duration `json:"duration"`

	Available bool               `json:"available,omitempty"`
	Analysis  *watchdog.Analysis `json:"analysis,omitempty"`
}

// Summary aggregates result counts for a run. Retried counts products
// that needed more than one attempt, whatever their final status.
type Summary struct {
	Success int `json:"success"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
	Retried int `json:"retried"`
}

// Report is the job runner's return value. It is transient: callers log
// or serve it, nothing persists it.
type Report struct {
	TotalProducts int             `json:"total_products"`
	Results       []ProductResult `json:"results"`
	Summary       Summary         `json:"summary"`
	Duration      time.Duration   `json:"duration"`
}

func summarize(results []ProductResult) Summary {
	var s Summary
	for _, r := range results {
		switch r.Status {
		case ResultSuccess:
			s.Success++
		case ResultFailed:
			s.Failed++
		case ResultSkipped:
			s.Skipped++
		}
		if r.Attempts > 1 {
			s.Retried++
		}
	}
	return s
}

// formatDuration renders a duration the way humans read job logs:
// "850ms", "12.3s", "2m 5s".
func formatDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		mins := int(d.Minutes())
		secs := int(d.Seconds()) - mins*60
		return fmt.Sprintf("%dm %ds", mins, secs)
	}
}
