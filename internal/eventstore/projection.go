// Package eventstore keeps a SQLite history of builds and their phases.
package eventstore

import (
	"context"
	"encoding/json"
	"slices"
	"time"
)

// BuildSummary is the read model of one recorded build.
type BuildSummary struct {
	BuildID     string
	StartedAt   time.Time
	CompletedAt time.Time
	Outcome     string
	Duration    time.Duration
	Written     map[string]int
	Skipped     int
	Warnings    int
	Error       string
	// Stages maps a phase name to its result.
	Stages map[string]string
}

// History folds every stored event into build summaries, newest first,
// returning at most limit entries. A limit of zero returns everything.
func History(ctx context.Context, store Store, limit int) ([]BuildSummary, error) {
	events, err := store.GetRange(ctx, time.UnixMilli(0), time.Now().Add(time.Hour))
	if err != nil {
		return nil, err
	}

	byID := map[string]*BuildSummary{}
	var order []string
	for _, e := range events {
		s, ok := byID[e.BuildID]
		if !ok {
			s = &BuildSummary{BuildID: e.BuildID, StartedAt: e.Timestamp, Stages: map[string]string{}, Written: map[string]int{}}
			byID[e.BuildID] = s
			order = append(order, e.BuildID)
		}
		if err := apply(s, e); err != nil {
			return nil, err
		}
	}

	out := make([]BuildSummary, 0, len(order))
	for _, id := range slices.Backward(order) {
		out = append(out, *byID[id])
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func apply(s *BuildSummary, e Event) error {
	switch e.Type {
	case TypeStageCompleted:
		var p StageCompleted
		if err := json.Unmarshal(e.Payload, &p); err != nil {
			return wrap(ErrPayloadFailed, err)
		}
		s.Stages[p.Stage] = p.Result
	case TypeBuildCompleted:
		var p BuildCompleted
		if err := json.Unmarshal(e.Payload, &p); err != nil {
			return wrap(ErrPayloadFailed, err)
		}
		s.CompletedAt = e.Timestamp
		s.Outcome = p.Outcome
		s.Duration = time.Duration(p.DurationMS * float64(time.Millisecond))
		s.Skipped = p.Skipped
		s.Warnings = p.Warnings
		s.Error = p.Error
		if p.Written != nil {
			s.Written = p.Written
		}
	}
	return nil
}
