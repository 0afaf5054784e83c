package site

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Outcome is the final result of a build.
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeWarning  Outcome = "warning"
	OutcomeFailed   Outcome = "failed"
	OutcomeCanceled Outcome = "canceled"
)

// Output kinds counted by the report.
const (
	KindPost   = "post"
	KindPage   = "page"
	KindFeed   = "feed"
	KindStatic = "static"
)

// Report summarises one build. It is safe for concurrent use while the build runs.
type Report struct {
	BuildID string
	Start   time.Time
	End     time.Time

	// Sources per bucket after partitioning.
	Posts   int
	Files   int
	Static  int
	Targets int

	// Written counts outputs per kind (post, page, feed, static).
	Written map[string]int
	// Skipped counts units that finished without writing: private static
	// files, empty outputs, targets missing configuration.
	Skipped int

	Warnings       []error
	Errors         []error
	StageDurations map[StageName]time.Duration
	StageResults   map[StageName]StageResult
	Outcome        Outcome

	mu sync.Mutex
}

func newReport(id string) *Report {
	return &Report{
		BuildID:        id,
		Start:          time.Now(),
		Written:        map[string]int{},
		StageDurations: map[StageName]time.Duration{},
		StageResults:   map[StageName]StageResult{},
	}
}

// Duration is the wall time of the build.
func (r *Report) Duration() time.Duration { return r.End.Sub(r.Start) }

// TotalWritten sums Written across kinds.
func (r *Report) TotalWritten() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.Written {
		n += c
	}
	return n
}

// Summary is a one-line human-readable description.
func (r *Report) Summary() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fmt.Sprintf("%s: %d posts, %d pages, %d feeds, %d static files in %s (%d warnings)",
		r.Outcome, r.Written[KindPost], r.Written[KindPage], r.Written[KindFeed], r.Written[KindStatic],
		r.End.Sub(r.Start).Round(time.Millisecond), len(r.Warnings))
}

func (r *Report) wrote(kind string) {
	r.mu.Lock()
	r.Written[kind]++
	r.mu.Unlock()
}

func (r *Report) skipped() {
	r.mu.Lock()
	r.Skipped++
	r.mu.Unlock()
}

func (r *Report) addWarning(err error) {
	r.mu.Lock()
	r.Warnings = append(r.Warnings, err)
	r.mu.Unlock()
}

func (r *Report) warningCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Warnings)
}

func (r *Report) recordStage(name StageName, d time.Duration, result StageResult, err *StageError) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.StageDurations[name] = d
	r.StageResults[name] = result
	if err != nil {
		r.Errors = append(r.Errors, err)
	}
}

func (r *Report) finish(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.End = time.Now()
	switch {
	case err == nil && len(r.Warnings) == 0:
		r.Outcome = OutcomeSuccess
	case err == nil:
		r.Outcome = OutcomeWarning
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		r.Outcome = OutcomeCanceled
	default:
		r.Outcome = OutcomeFailed
	}
}
