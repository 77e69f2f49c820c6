package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultCronSchedule is every 6 hours, the fallback when the
// configured expression does not parse.
const DefaultCronSchedule = "0 */6 * * *"

// historyCapacity bounds the ring of retained run records.
const historyCapacity = 10

// RunRecord is one entry of the guard's run history.
type RunRecord struct {
	RunAt         time.Time     `json:"run_at"`
	Duration      time.Duration `json:"duration"`
	TotalProducts int           `json:"total_products"`
	Summary       *Summary      `json:"summary,omitempty"`
	Error         string        `json:"error,omitempty"`
}

// Status is a read-only snapshot of the guard's state.
type Status struct {
	IsRunning       bool          `json:"is_running"`
	Schedule        string        `json:"schedule"`
	StartedAt       *time.Time    `json:"started_at,omitempty"`
	LastRunAt       *time.Time    `json:"last_run_at,omitempty"`
	LastRunDuration time.Duration `json:"last_run_duration,omitempty"`
	LastRunSummary  *Summary      `json:"last_run_summary,omitempty"`
	TotalRuns       int           `json:"total_runs"`
	RecentHistory   []RunRecord   `json:"recent_history"`
}

// Guard triggers the job runner on a cron schedule and refuses to start
// a run while one is in flight. Manual triggers go through the same
// flag, so overlapping runs are impossible process-wide.
type Guard struct {
	runner   *Runner
	defaults Options
	log      *slog.Logger

	mu              sync.Mutex
	running         bool
	schedule        string
	startedAt       time.Time
	lastRunAt       time.Time
	lastRunDuration time.Duration
	lastRunSummary  *Summary
	totalRuns       int
	history         []RunRecord // newest first, capped at historyCapacity

	cron *cron.Cron
}

// NewGuard creates a Guard around runner. defaults apply to scheduled
// runs; manual triggers may override them.
func NewGuard(runner *Runner, defaults Options, log *slog.Logger) *Guard {
	return &Guard{
		runner:   runner,
		defaults: defaults,
		log:      log.With("component", "schedule-guard"),
	}
}

// Start validates schedule, falling back to DefaultCronSchedule, and
// begins ticking. Call Stop on shutdown.
func (g *Guard) Start(schedule string) {
	if _, err := cron.ParseStandard(schedule); err != nil {
		g.log.Error("invalid cron expression, falling back",
			"schedule", schedule, "fallback", DefaultCronSchedule, "error", err)
		schedule = DefaultCronSchedule
	}

	g.mu.Lock()
	g.schedule = schedule
	g.startedAt = time.Now()
	g.mu.Unlock()

	g.cron = cron.New()
	// AddFunc cannot fail here: the expression was just validated.
	g.cron.AddFunc(schedule, func() {
		if !g.TriggerAsync(context.Background(), g.defaults) {
			g.log.Warn("scrape job already running, skipping this tick")
		}
	})
	g.cron.Start()

	g.log.Info("scheduled jobs initialized", "schedule", schedule)
}

// Stop halts the cron scheduler. An in-flight run finishes on its own.
func (g *Guard) Stop() {
	if g.cron != nil {
		g.cron.Stop()
		g.log.Info("scheduled jobs stopped")
	}
}

// TriggerAsync starts a run in the background if none is in flight and
// reports whether it did. The caller observes completion only through
// Status; this is the fire-and-forget entry point for both cron ticks
// and the manual trigger API.
func (g *Guard) TriggerAsync(ctx context.Context, opts Options) bool {
	if !g.tryAcquire() {
		return false
	}
	go g.run(ctx, g.mergeDefaults(opts))
	return true
}

// RunNow executes a run synchronously if none is in flight. Returns the
// report, or false when the guard refused.
func (g *Guard) RunNow(ctx context.Context, opts Options) (*Report, bool) {
	if !g.tryAcquire() {
		return nil, false
	}
	return g.run(ctx, g.mergeDefaults(opts)), true
}

// mergeDefaults fills unset override fields from the guard's configured
// defaults. Fields still unset after the merge fall back to the package
// defaults inside the runner.
func (g *Guard) mergeDefaults(opts Options) Options {
	if opts.BatchSize <= 0 {
		opts.BatchSize = g.defaults.BatchSize
	}
	if opts.BatchDelay <= 0 {
		opts.BatchDelay = g.defaults.BatchDelay
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = g.defaults.MaxRetries
	}
	if opts.RetryBaseDelay <= 0 {
		opts.RetryBaseDelay = g.defaults.RetryBaseDelay
	}
	return opts
}

func (g *Guard) tryAcquire() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.running {
		return false
	}
	g.running = true
	g.lastRunAt = time.Now()
	return true
}

// run executes the job and records its outcome. The in-flight flag is
// cleared in the deferred path no matter how the run ends, so one
// crashed run cannot wedge the schedule forever.
func (g *Guard) run(ctx context.Context, opts Options) (report *Report) {
	start := time.Now()
	rec := RunRecord{RunAt: start}

	defer func() {
		if p := recover(); p != nil {
			rec.Error = fmt.Sprintf("panic: %v", p)
			g.log.Error("scrape job crashed", "panic", p)
		}
		rec.Duration = time.Since(start)
		g.record(rec, report)
	}()

	report, err := g.runner.Run(ctx, opts)
	if err != nil {
		rec.Error = err.Error()
		g.log.Error("scrape job failed", "error", err)
		return nil
	}

	rec.TotalProducts = report.TotalProducts
	summary := report.Summary
	rec.Summary = &summary
	return report
}

func (g *Guard) record(rec RunRecord, report *Report) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.running = false
	g.lastRunDuration = rec.Duration
	if report != nil {
		summary := report.Summary
		g.lastRunSummary = &summary
		g.totalRuns++
	}

	g.history = append([]RunRecord{rec}, g.history...)
	if len(g.history) > historyCapacity {
		g.history = g.history[:historyCapacity]
	}
}

// Status returns a copy of the guard's current state.
func (g *Guard) Status() Status {
	g.mu.Lock()
	defer g.mu.Unlock()

	st := Status{
		IsRunning:       g.running,
		Schedule:        g.schedule,
		LastRunDuration: g.lastRunDuration,
		LastRunSummary:  g.lastRunSummary,
		TotalRuns:       g.totalRuns,
		RecentHistory:   append([]RunRecord(nil), g.history...),
	}
	if !g.startedAt.IsZero() {
		t := g.startedAt
		st.StartedAt = &t
	}
	if !g.lastRunAt.IsZero() {
		t := g.lastRunAt
		st.LastRunAt = &t
	}
	return st
}
