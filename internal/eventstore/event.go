package eventstore

import "time"

// Event is one stored record of something that happened during a build.
type Event struct {
	ID        int64
	BuildID   string
	Type      string
	Timestamp time.Time
	Payload   []byte
	Metadata  map[string]string
}
