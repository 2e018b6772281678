package status

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNoStatus is returned by Load when no status file exists on disk.
var ErrNoStatus = errors.New("glint is not running")

// StaleError reports a status file left behind by a process that exited
// without removing it, after a crash or SIGKILL. It matches ErrNoStatus.
type StaleError struct {
	PID int
}

func (e *StaleError) Error() string {
	return fmt.Sprintf("glint is not running (pid %d exited without cleaning up)", e.PID)
}

func (e *StaleError) Is(target error) bool { return target == ErrNoStatus }

// Store persists a Status to disk.
type Store interface {
	Save(s *Status) error
	Load() (*Status, error) // returns ErrNoStatus if none exists
	// Release removes the file if it still belongs to instanceID.
	Release(instanceID string) error
}

// diskStore is the concrete Store that writes to the XDG data directory.
type diskStore struct {
	path string // full path to status.json
}

// NewStore returns a Store backed by the XDG data directory.
// Path: $XDG_DATA_HOME/glint/status.json or ~/.local/share/glint/status.json
func NewStore() (Store, error) {
	dir, err := DataDir()
	if err != nil {
		return nil, fmt.Errorf("resolving data directory: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return &diskStore{path: filepath.Join(dir, "status.json")}, nil
}

// DataDir returns the glint-specific XDG data directory.
func DataDir() (string, error) {
	base := os.Getenv("XDG_DATA_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(base, "glint"), nil
}

// Save marshals s to JSON and writes it atomically via a temp file + os.Rename.
func (d *diskStore) Save(s *Status) (err error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to persist status: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(d.path), "status-*.json.tmp")
	if err != nil {
		return fmt.Errorf("failed to persist status: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to persist status: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to persist status: %w", err)
	}
	if err = os.Rename(tmpName, d.path); err != nil {
		return fmt.Errorf("failed to persist status: %w", err)
	}
	return nil
}

// Load reads and unmarshals the status file.
func (d *diskStore) Load() (*Status, error) {
	data, err := os.ReadFile(d.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoStatus
		}
		return nil, fmt.Errorf("failed to read status: %w", err)
	}

	var s Status
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse status: %w", err)
	}
	return &s, nil
}

// Release deletes the status file unless another instance has since taken
// it over.
func (d *diskStore) Release(instanceID string) error {
	s, err := d.Load()
	if errors.Is(err, ErrNoStatus) {
		return nil
	}
	if err == nil && s.InstanceID != instanceID {
		return nil
	}
	if err := os.Remove(d.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete status: %w", err)
	}
	return nil
}

// Current loads the status of the running instance. A file whose writer is
// gone is removed and reported as a *StaleError.
func Current(st Store) (*Status, error) {
	s, err := st.Load()
	if err != nil {
		return nil, err
	}
	if !s.Running() {
		if err := st.Release(s.InstanceID); err != nil {
			return nil, err
		}
		return nil, &StaleError{PID: s.PID}
	}
	return s, nil
}
