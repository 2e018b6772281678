// Package status persists what the running glint process is doing so that
// `glint status` can report it from another shell. Only the current state is
// kept, never a history.
package status

import (
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/fakeyudi/glint/internal/connection"
	"github.com/fakeyudi/glint/internal/presence"
)

// Status is the content of the status file.
type Status struct {
	InstanceID string             `json:"instance_id"`
	PID        int                `json:"pid"`
	Mode       string             `json:"mode"` // serve or watch
	State      string             `json:"state"`
	StartedAt  time.Time          `json:"started_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
	Activity   *presence.Activity `json:"activity,omitempty"`
	LastError  string             `json:"last_error,omitempty"`
}

// New returns a fresh Status for this process.
func New(mode string, now time.Time) *Status {
	return &Status{
		InstanceID: uuid.NewString(),
		PID:        os.Getpid(),
		Mode:       mode,
		State:      connection.Disconnected.String(),
		StartedAt:  now,
		UpdatedAt:  now,
	}
}

// Running reports whether the process that wrote s still exists.
func (s *Status) Running() bool {
	return processAlive(s.PID)
}

// Apply records a connection event.
func (s *Status) Apply(ev connection.Event, now time.Time) {
	s.State = ev.State.String()
	s.UpdatedAt = now
	if ev.Published {
		a := ev.Activity
		s.Activity = &a
	}
	switch {
	case ev.Err != nil:
		s.LastError = ev.Err.Error()
	case ev.State == connection.Connected:
		s.LastError = ""
	}
}
