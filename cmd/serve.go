package cmd

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/fakeyudi/glint/internal/connection"
	"github.com/fakeyudi/glint/internal/editor"
	"github.com/fakeyudi/glint/internal/presence"
	"github.com/fakeyudi/glint/internal/snapshot"
)

// errEditorGone ends the serve loop when the editor quits or closes stdin.
var errEditorGone = errors.New("editor gone")

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Publish presence for an editor that writes its state to stdin",
	Long: `serve is started by the editor plugin. It reads one JSON message per line
from stdin (update, reconnect, disconnect, quit) and keeps a single Discord
connection for the lifetime of the editor.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runServe(ctx, cmd.InOrStdin(), newTransport())
	},
}

// runServe wires stdin to the connection manager. Messages are handled one
// at a time on a single goroutine, in the order the editor sent them.
func runServe(ctx context.Context, in io.Reader, tr connection.Transport) error {
	rec := newRecorder("serve")
	defer rec.release()

	var (
		latest snapshot.Snapshot
		have   bool
	)
	host := connection.HostFunc(func() (snapshot.Snapshot, bool) { return latest, have })
	engine := presence.NewEngine(cfg, time.Now())
	mgr := connection.New(tr, engine, host, cfg.ClientID, connection.Options{
		Logger:   logger,
		Observer: rec.observe,
	})

	msgs := make(chan editor.Message, 16)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(msgs)
		err := editor.Read(gctx, in, msgs, logger)
		if err != nil && gctx.Err() != nil {
			return nil // stdin closed below on shutdown
		}
		return err
	})

	// Reads from stdin cannot be cancelled; closing it is the only way to
	// release the reader.
	g.Go(func() error {
		<-gctx.Done()
		if c, ok := in.(io.Closer); ok {
			_ = c.Close()
		}
		return nil
	})

	g.Go(func() error {
		_ = mgr.Initialize(gctx)
		defer func() { _ = mgr.Disconnect() }()

		for {
			select {
			case <-gctx.Done():
				return nil
			case m, ok := <-msgs:
				if !ok {
					return errEditorGone
				}
				switch m.Type {
				case editor.MsgUpdate:
					latest, have = snapshot.FromEditor(*m.State), true
					mgr.OnEditorEvent(gctx)
				case editor.MsgReconnect:
					if err := mgr.Reconnect(gctx); err != nil {
						logger.Info("reconnect", "result", err)
					}
				case editor.MsgDisconnect:
					_ = mgr.Disconnect()
				case editor.MsgQuit:
					return errEditorGone
				}
			}
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errEditorGone) {
		logger.Error("serve stopped", "err", err)
		return err
	}
	logger.Debug("serve stopped")
	return nil
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
