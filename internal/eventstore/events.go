package eventstore

import (
	"encoding/json"
	"time"
)

// Event types written by the history observer.
const (
	TypeStageCompleted = "StageCompleted"
	TypeBuildCompleted = "BuildCompleted"
)

// StageCompleted records one finished build phase.
type StageCompleted struct {
	Stage      string  `json:"stage"`
	Result     string  `json:"result"`
	DurationMS float64 `json:"duration_ms"`
}

// BuildCompleted records the outcome of a full build.
type BuildCompleted struct {
	Outcome    string         `json:"outcome"`
	Posts      int            `json:"posts"`
	Files      int            `json:"files"`
	Static     int            `json:"static"`
	Targets    int            `json:"targets"`
	Written    map[string]int `json:"written"`
	Skipped    int            `json:"skipped"`
	Warnings   int            `json:"warnings"`
	Error      string         `json:"error,omitempty"`
	DurationMS float64        `json:"duration_ms"`
}

func newEvent(buildID, eventType string, at time.Time, payload any) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, wrap(ErrPayloadFailed, err)
	}
	return Event{BuildID: buildID, Type: eventType, Timestamp: at, Payload: data}, nil
}

// NewStageCompleted creates a StageCompleted event.
func NewStageCompleted(buildID string, at time.Time, s StageCompleted) (Event, error) {
	return newEvent(buildID, TypeStageCompleted, at, s)
}

// NewBuildCompleted creates a BuildCompleted event.
func NewBuildCompleted(buildID string, at time.Time, b BuildCompleted) (Event, error) {
	return newEvent(buildID, TypeBuildCompleted, at, b)
}

func ms(d time.Duration) float64 { return float64(d.Microseconds()) / 1000 }
