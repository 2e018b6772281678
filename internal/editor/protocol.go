// Package editor implements the line protocol spoken between the editor
// plugin and `glint serve`, and installs that plugin.
package editor

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/fakeyudi/glint/internal/snapshot"
)

// MessageType names a request from the editor.
type MessageType string

const (
	MsgUpdate     MessageType = "update"
	MsgReconnect  MessageType = "reconnect"
	MsgDisconnect MessageType = "disconnect"
	MsgQuit       MessageType = "quit"
)

// Message is one line on the wire. State is only set for updates.
type Message struct {
	Type  MessageType           `json:"type"`
	State *snapshot.EditorState `json:"state,omitempty"`
}

// maxLine bounds a single message; editor state is a few hundred bytes.
const maxLine = 64 << 10

// Decode parses one line. Unknown types and updates without state are
// rejected.
func Decode(line []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(line, &m); err != nil {
		return Message{}, fmt.Errorf("decode message: %w", err)
	}
	switch m.Type {
	case MsgUpdate:
		if m.State == nil {
			return Message{}, fmt.Errorf("update without state")
		}
	case MsgReconnect, MsgDisconnect, MsgQuit:
	default:
		return Message{}, fmt.Errorf("unknown message type %q", m.Type)
	}
	return m, nil
}

// Read decodes newline-delimited messages from r onto out until r is
// exhausted or ctx is cancelled. Malformed lines are logged and skipped.
// out is not closed.
func Read(ctx context.Context, r io.Reader, out chan<- Message, log *slog.Logger) error {
	if log == nil {
		log = slog.Default()
	}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), maxLine)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		m, err := Decode(line)
		if err != nil {
			log.Warn("skipping editor message", "err", err)
			continue
		}
		select {
		case out <- m:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading editor messages: %w", err)
	}
	return nil
}
