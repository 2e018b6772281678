package connection

import (
	"context"
	"errors"

	"github.com/fakeyudi/glint/internal/presence"
	"github.com/fakeyudi/glint/internal/snapshot"
)

var errNoCompanion = errors.New("dial: no companion app")

// mockTransport hands out sessions from connectFn and counts attempts.
type mockTransport struct {
	connectFn    func() (Session, error)
	calls        int
	lastClientID string
}

func (m *mockTransport) Connect(_ context.Context, clientID string) (Session, error) {
	m.calls++
	m.lastClientID = clientID
	return m.connectFn()
}

// mockSession records every activity it is sent.
type mockSession struct {
	sent    []presence.Activity
	sendErr error
	closed  int
}

func (m *mockSession) SetActivity(_ context.Context, a presence.Activity) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, a)
	return nil
}

func (m *mockSession) Close() error {
	m.closed++
	return nil
}

// mockHost returns a fixed snapshot and counts queries.
type mockHost struct {
	snap  snapshot.Snapshot
	ok    bool
	calls int
}

func (m *mockHost) Snapshot() (snapshot.Snapshot, bool) {
	m.calls++
	return m.snap, m.ok
}

// sessions returns a connectFn that yields each session in turn, then fails.
func sessions(ss ...*mockSession) func() (Session, error) {
	i := 0
	return func() (Session, error) {
		if i >= len(ss) {
			return nil, errNoCompanion
		}
		s := ss[i]
		i++
		return s, nil
	}
}

func failing() (Session, error) { return nil, errNoCompanion }

// rejectedErr is a refused update on a channel that is still open.
type rejectedErr struct{ reason string }

func (e *rejectedErr) Error() string  { return "rejected: " + e.reason }
func (e *rejectedErr) Rejected() bool { return true }
