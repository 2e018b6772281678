package status_test

import (
	"errors"
	"os"
	"os/exec"
	"testing"
	"time"

	"pgregory.net/rapid"

	"github.com/fakeyudi/glint/internal/connection"
	"github.com/fakeyudi/glint/internal/presence"
	"github.com/fakeyudi/glint/internal/status"
)

// generateTime produces a second-precision UTC time.
func generateTime(t *rapid.T, label string) time.Time {
	sec := rapid.Int64Range(0, 1_700_000_000).Draw(t, label)
	return time.Unix(sec, 0).UTC()
}

func generateStatus(t *rapid.T) *status.Status {
	s := &status.Status{
		InstanceID: rapid.StringN(1, 36, -1).Draw(t, "id"),
		PID:        rapid.IntRange(1, 1<<22).Draw(t, "pid"),
		Mode:       rapid.SampledFrom([]string{"serve", "watch"}).Draw(t, "mode"),
		State:      rapid.SampledFrom([]string{"connected", "disconnected"}).Draw(t, "state"),
		StartedAt:  generateTime(t, "started"),
		UpdatedAt:  generateTime(t, "updated"),
		LastError:  rapid.StringN(0, 50, -1).Draw(t, "last_error"),
	}
	if rapid.Bool().Draw(t, "has_activity") {
		s.Activity = &presence.Activity{
			Details:    rapid.StringN(0, 60, -1).Draw(t, "details"),
			State:      rapid.StringN(0, 60, -1).Draw(t, "state_line"),
			LargeImage: rapid.StringN(0, 20, -1).Draw(t, "large_image"),
			Start:      rapid.Int64Range(0, 1<<40).Draw(t, "start"),
		}
	}
	return s
}

// Feature: glint, Property: status persistence round-trip
func TestStatusPersistenceRoundTrip(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	store, err := status.NewStore()
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	rapid.Check(t, func(t *rapid.T) {
		original := generateStatus(t)
		if err := store.Save(original); err != nil {
			t.Fatalf("Save: %v", err)
		}
		loaded, err := store.Load()
		if err != nil {
			t.Fatalf("Load: %v", err)
		}

		if loaded.InstanceID != original.InstanceID || loaded.PID != original.PID ||
			loaded.Mode != original.Mode || loaded.State != original.State ||
			loaded.LastError != original.LastError {
			t.Fatalf("scalar mismatch: got %+v, want %+v", loaded, original)
		}
		if !loaded.StartedAt.Equal(original.StartedAt) || !loaded.UpdatedAt.Equal(original.UpdatedAt) {
			t.Fatalf("time mismatch: got %v/%v, want %v/%v",
				loaded.StartedAt, loaded.UpdatedAt, original.StartedAt, original.UpdatedAt)
		}
		if (loaded.Activity == nil) != (original.Activity == nil) {
			t.Fatalf("Activity nil mismatch: got %v, want %v", loaded.Activity, original.Activity)
		}
		if loaded.Activity != nil && *loaded.Activity != *original.Activity {
			t.Fatalf("Activity mismatch: got %+v, want %+v", *loaded.Activity, *original.Activity)
		}
	})
}

func TestLoadReturnsErrNoStatus(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	store, err := status.NewStore()
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if _, err := store.Load(); !errors.Is(err, status.ErrNoStatus) {
		t.Errorf("expected ErrNoStatus, got: %v", err)
	}
}

func TestReleaseOnlyOwnFile(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	store, err := status.NewStore()
	if err != nil {
		t.Fatal(err)
	}

	mine := status.New("serve", time.Now())
	if err := store.Save(mine); err != nil {
		t.Fatal(err)
	}
	if err := store.Release("someone-else"); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if _, err := store.Load(); err != nil {
		t.Fatalf("file of another instance must survive: %v", err)
	}

	if err := store.Release(mine.InstanceID); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if _, err := store.Load(); !errors.Is(err, status.ErrNoStatus) {
		t.Errorf("expected ErrNoStatus after release, got %v", err)
	}
	if err := store.Release(mine.InstanceID); err != nil {
		t.Errorf("second Release: %v", err)
	}
}

// exitedPID returns the pid of a child process that has already exited.
func exitedPID(t *testing.T) int {
	t.Helper()
	cmd := exec.Command(os.Args[0], "-test.run=^$")
	if err := cmd.Run(); err != nil {
		t.Fatalf("running child: %v", err)
	}
	return cmd.Process.Pid
}

func TestCurrentReturnsLiveStatus(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	store, err := status.NewStore()
	if err != nil {
		t.Fatal(err)
	}
	mine := status.New("serve", time.Now())
	if !mine.Running() {
		t.Fatal("this process must count as running")
	}
	if err := store.Save(mine); err != nil {
		t.Fatal(err)
	}
	got, err := status.Current(store)
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if got.InstanceID != mine.InstanceID {
		t.Errorf("InstanceID = %q, want %q", got.InstanceID, mine.InstanceID)
	}
}

func TestCurrentDiscardsStaleStatus(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	store, err := status.NewStore()
	if err != nil {
		t.Fatal(err)
	}
	dead := status.New("serve", time.Now())
	dead.PID = exitedPID(t)
	dead.State = "connected"
	if err := store.Save(dead); err != nil {
		t.Fatal(err)
	}

	_, err = status.Current(store)
	if !errors.Is(err, status.ErrNoStatus) {
		t.Fatalf("Current = %v, want ErrNoStatus", err)
	}
	var stale *status.StaleError
	if !errors.As(err, &stale) || stale.PID != dead.PID {
		t.Errorf("Current = %v, want StaleError for pid %d", err, dead.PID)
	}
	if _, err := store.Load(); !errors.Is(err, status.ErrNoStatus) {
		t.Errorf("stale file should be removed, Load = %v", err)
	}
}

func TestApplyEvents(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	s := status.New("watch", now)
	if s.InstanceID == "" || s.PID != os.Getpid() || s.State != "disconnected" {
		t.Fatalf("unexpected new status %+v", s)
	}

	a := presence.Activity{Details: "Editing main.go"}
	s.Apply(connection.Event{State: connection.Connected, Activity: a, Published: true}, now.Add(time.Second))
	if s.State != "connected" || s.Activity == nil || s.Activity.Details != "Editing main.go" {
		t.Errorf("publish not recorded: %+v", s)
	}

	s.Apply(connection.Event{State: connection.Disconnected, Activity: a, Err: errors.New("broken pipe")}, now.Add(2*time.Second))
	if s.State != "disconnected" || s.LastError != "broken pipe" {
		t.Errorf("drop not recorded: %+v", s)
	}
	if !s.UpdatedAt.Equal(now.Add(2 * time.Second)) {
		t.Errorf("UpdatedAt = %v", s.UpdatedAt)
	}

	s.Apply(connection.Event{State: connection.Connected}, now.Add(3*time.Second))
	if s.LastError != "" {
		t.Errorf("LastError should clear on reconnect, got %q", s.LastError)
	}
}

func TestNewStoreUnwritableDir(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("running as root; permission checks are ineffective")
	}
	tmp := t.TempDir()
	if err := os.Chmod(tmp, 0o000); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	t.Cleanup(func() { os.Chmod(tmp, 0o755) })
	t.Setenv("XDG_DATA_HOME", tmp)

	if _, err := status.NewStore(); err == nil {
		t.Fatal("expected error creating store in unwritable directory, got nil")
	}
}
