package cmd

import (
	"context"
	"time"

	"github.com/fakeyudi/glint/internal/connection"
	"github.com/fakeyudi/glint/internal/ipc"
	"github.com/fakeyudi/glint/internal/status"
)

// ipcTransport adapts the Discord IPC dialer to the connection manager.
type ipcTransport struct {
	dialer *ipc.Dialer
}

func (t ipcTransport) Connect(ctx context.Context, clientID string) (connection.Session, error) {
	c, err := t.dialer.Connect(ctx, clientID)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// newTransport builds the transport used by serve and watch. Tests swap it.
var newTransport = func() connection.Transport {
	return ipcTransport{dialer: &ipc.Dialer{Logger: logger}}
}

// recorder mirrors connection events into the status file. A status file
// that cannot be written only costs `glint status`, so failures are logged.
type recorder struct {
	store status.Store
	st    *status.Status
}

func newRecorder(mode string) *recorder {
	r := &recorder{st: status.New(mode, time.Now())}
	store, err := status.NewStore()
	if err != nil {
		logger.Warn("status file disabled", "err", err)
		return r
	}
	r.store = store
	r.save()
	return r
}

func (r *recorder) observe(ev connection.Event) {
	r.st.Apply(ev, time.Now())
	r.save()
}

func (r *recorder) save() {
	if r.store == nil {
		return
	}
	if err := r.store.Save(r.st); err != nil {
		logger.Warn("writing status file", "err", err)
	}
}

func (r *recorder) release() {
	if r.store == nil {
		return
	}
	if err := r.store.Release(r.st.InstanceID); err != nil {
		logger.Warn("removing status file", "err", err)
	}
}
