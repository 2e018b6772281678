package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/fakeyudi/glint/internal/connection"
	"github.com/fakeyudi/glint/internal/presence"
	"github.com/fakeyudi/glint/internal/snapshot"
	"github.com/fakeyudi/glint/internal/tui"
)

var watchPlain bool

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Publish presence from file changes in a directory",
	Long: `watch is for editors without the glint plugin. Every file written under dir
(default: the current directory) becomes the active buffer.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := "."
		if len(args) == 1 {
			dir = args[0]
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runWatch(ctx, dir, watchPlain, cmd.OutOrStdout(), newTransport())
	},
}

// runWatch feeds filesystem changes under dir to the connection manager. With
// plain set, events are printed as lines; otherwise the dashboard runs.
func runWatch(ctx context.Context, dir string, plain bool, out io.Writer, tr connection.Transport) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", dir, err)
	}
	if info, err := os.Stat(abs); err != nil || !info.IsDir() {
		return fmt.Errorf("not a directory: %s", dir)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	rec := newRecorder("watch")
	defer rec.release()

	requests := make(chan tui.Request, 1)
	var prog *tea.Program
	if !plain {
		prog = tea.NewProgram(tui.New(abs, requests), tea.WithContext(ctx), tea.WithAltScreen())
	}

	observe := func(ev connection.Event) {
		rec.observe(ev)
		if prog != nil {
			prog.Send(tui.EventMsg(ev))
			return
		}
		switch {
		case ev.Published:
			fmt.Fprintf(out, "published: %s | %s\n", ev.Activity.Details, ev.Activity.State)
		case ev.Err != nil:
			fmt.Fprintf(out, "%s: %v\n", ev.State, ev.Err)
		default:
			fmt.Fprintln(out, ev.State)
		}
	}

	var (
		latest snapshot.Snapshot
		have   bool
	)
	host := connection.HostFunc(func() (snapshot.Snapshot, bool) { return latest, have })
	engine := presence.NewEngine(cfg, time.Now())
	mgr := connection.New(tr, engine, host, cfg.ClientID, connection.Options{
		Logger:   logger,
		Observer: observe,
	})

	// Bursts of writes collapse into whatever fits the buffer; every cycle
	// recomputes from the file on disk anyway.
	paths := make(chan string, 32)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return snapshot.Watch(gctx, abs, snapshot.DefaultIgnore, func(p string) {
			select {
			case paths <- p:
			default:
			}
		})
	})

	if prog != nil {
		g.Go(func() error {
			defer cancel()
			if _, err := prog.Run(); err != nil && gctx.Err() == nil {
				return err
			}
			return nil
		})
	}

	g.Go(func() error {
		_ = mgr.Initialize(gctx)
		defer func() { _ = mgr.Disconnect() }()

		for {
			select {
			case <-gctx.Done():
				return nil
			case p := <-paths:
				s, err := snapshot.FromFile(p, abs)
				if err != nil {
					logger.Debug("probe failed", "path", p, "err", err)
					continue
				}
				latest, have = s, true
				mgr.OnEditorEvent(gctx)
				rel, _ := filepath.Rel(abs, p)
				if prog != nil {
					prog.Send(tui.FileMsg{Path: rel, Case: engine.Classify(s)})
				} else {
					fmt.Fprintf(out, "changed: %s (%s)\n", rel, engine.Classify(s))
				}
			case r := <-requests:
				switch r {
				case tui.RequestReconnect:
					if err := mgr.Reconnect(gctx); err != nil {
						logger.Info("reconnect", "result", err)
					}
				case tui.RequestDisconnect:
					_ = mgr.Disconnect()
				}
			}
		}
	})

	return g.Wait()
}

func init() {
	watchCmd.Flags().BoolVar(&watchPlain, "plain", false, "print events as lines instead of the dashboard")
	rootCmd.AddCommand(watchCmd)
}
