// Package connection owns the single IPC session to the companion app. It
// keeps the session alive across publishes, drops to Disconnected when the
// channel breaks and only reconnects when asked to.
package connection

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/fakeyudi/glint/internal/presence"
	"github.com/fakeyudi/glint/internal/snapshot"
)

// Errors reported to the host. Transport failures are never returned.
var (
	ErrNotInitialized     = errors.New("connection: not initialized")
	ErrAlreadyInitialized = errors.New("connection: already initialized")
	ErrAlreadyConnected   = errors.New("connection: already connected")
)

// State is the externally observable connection state.
type State int

const (
	Disconnected State = iota
	Connected
)

func (s State) String() string {
	if s == Connected {
		return "connected"
	}
	return "disconnected"
}

// Transport opens sessions to the companion app.
type Transport interface {
	Connect(ctx context.Context, clientID string) (Session, error)
}

// Session is one open IPC channel.
type Session interface {
	SetActivity(ctx context.Context, a presence.Activity) error
	Close() error
}

// Rejection is implemented by SetActivity errors that refuse a single update
// on a channel that stays usable. Any other error means the channel is broken.
type Rejection interface {
	error
	Rejected() bool
}

// Host answers the current editor state. ok is false when the host has
// nothing to report; the manager then computes from an empty snapshot.
type Host interface {
	Snapshot() (s snapshot.Snapshot, ok bool)
}

// HostFunc adapts a plain function to Host.
type HostFunc func() (snapshot.Snapshot, bool)

func (f HostFunc) Snapshot() (snapshot.Snapshot, bool) { return f() }

// Event describes a state transition or a successful publish.
type Event struct {
	State     State
	Activity  presence.Activity // last published activity
	Published bool              // Activity was just sent
	Err       error             // rejected update, or the error behind a drop to Disconnected
}

// Observer is notified after every Event. It runs outside the manager lock
// and may call back into the manager.
type Observer func(Event)

// Options tune a Manager. Zero values are valid.
type Options struct {
	Logger   *slog.Logger
	Observer Observer
}

// Manager drives the presence engine over a Transport. Its methods are safe
// for concurrent use but callers are expected to serialise events.
type Manager struct {
	transport Transport
	engine    *presence.Engine
	host      Host
	clientID  string
	log       *slog.Logger
	observer  Observer

	mu          sync.Mutex
	initialized bool
	session     Session
	current     presence.Activity
	published   bool
	pending     []Event
}

// New returns a Manager in the Disconnected state. Nothing is dialled until
// Initialize.
func New(t Transport, e *presence.Engine, h Host, clientID string, opts Options) *Manager {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Manager{
		transport: t,
		engine:    e,
		host:      h,
		clientID:  clientID,
		log:       log.With("component", "connection"),
		observer:  opts.Observer,
	}
}

// Initialize makes the one startup connection attempt. On success the idle
// baseline is published so the remote side starts from a known state. A
// failed attempt leaves the manager Disconnected and is not an error.
func (m *Manager) Initialize(ctx context.Context) error {
	m.mu.Lock()
	defer m.unlockAndNotify()

	if m.initialized {
		return ErrAlreadyInitialized
	}
	m.initialized = true
	if m.connectLocked(ctx) {
		m.publishLocked(ctx, m.engine.Baseline())
	}
	return nil
}

// Publish sends a. It is a no-op while Disconnected; a send failure closes
// the session and drops to Disconnected.
func (m *Manager) Publish(ctx context.Context, a presence.Activity) {
	m.mu.Lock()
	defer m.unlockAndNotify()
	m.publishLocked(ctx, a)
}

// OnEditorEvent runs one compute-and-publish cycle. Events arriving while
// Disconnected are dropped without touching the host.
func (m *Manager) OnEditorEvent(ctx context.Context) {
	m.mu.Lock()
	defer m.unlockAndNotify()

	if m.session == nil {
		return
	}
	m.publishLocked(ctx, m.computeLocked())
}

// Reconnect re-establishes a dropped session and immediately publishes the
// current presence. It fails with ErrAlreadyConnected, without publishing,
// when a session is open.
func (m *Manager) Reconnect(ctx context.Context) error {
	m.mu.Lock()
	defer m.unlockAndNotify()

	if !m.initialized {
		return ErrNotInitialized
	}
	if m.session != nil {
		return ErrAlreadyConnected
	}
	if m.connectLocked(ctx) {
		m.publishLocked(ctx, m.computeLocked())
	}
	return nil
}

// Disconnect closes the session. Calling it while Disconnected is a no-op.
func (m *Manager) Disconnect() error {
	m.mu.Lock()
	defer m.unlockAndNotify()

	if !m.initialized {
		return ErrNotInitialized
	}
	if m.session != nil {
		m.dropLocked(nil)
	}
	return nil
}

// State reports the current connection state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stateLocked()
}

// Current returns the last activity that was successfully published.
func (m *Manager) Current() (presence.Activity, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current, m.published
}

func (m *Manager) stateLocked() State {
	if m.session != nil {
		return Connected
	}
	return Disconnected
}

func (m *Manager) computeLocked() presence.Activity {
	var s snapshot.Snapshot
	if m.host != nil {
		if got, ok := m.host.Snapshot(); ok {
			s = got
		}
	}
	// A suppressed snapshot yields the baseline, which is what gets sent.
	a, ok := m.engine.Compute(s)
	if !ok {
		m.log.Debug("presence suppressed by ignore rules")
	}
	return a
}

func (m *Manager) connectLocked(ctx context.Context) bool {
	sess, err := m.transport.Connect(ctx, m.clientID)
	if err != nil {
		m.log.Debug("connect failed", "err", err)
		return false
	}
	m.session = sess
	m.log.Debug("connected")
	m.emit(Event{State: Connected, Activity: m.current})
	return true
}

func (m *Manager) publishLocked(ctx context.Context, a presence.Activity) {
	if m.session == nil {
		return
	}
	if err := m.session.SetActivity(ctx, a); err != nil {
		var rej Rejection
		if errors.As(err, &rej) && rej.Rejected() {
			m.log.Warn("activity rejected", "details", a.Details, "err", err)
			m.emit(Event{State: Connected, Activity: m.current, Err: err})
			return
		}
		m.log.Debug("publish failed", "err", err)
		m.dropLocked(err)
		return
	}
	m.current = a
	m.published = true
	m.emit(Event{State: Connected, Activity: a, Published: true})
}

func (m *Manager) dropLocked(cause error) {
	if err := m.session.Close(); err != nil {
		m.log.Debug("close failed", "err", err)
	}
	m.session = nil
	m.log.Debug("disconnected")
	m.emit(Event{State: Disconnected, Activity: m.current, Err: cause})
}

func (m *Manager) emit(ev Event) {
	if m.observer != nil {
		m.pending = append(m.pending, ev)
	}
}

func (m *Manager) unlockAndNotify() {
	events := m.pending
	m.pending = nil
	m.mu.Unlock()
	for _, ev := range events {
		m.observer(ev)
	}
}
