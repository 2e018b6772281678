// Package ipc speaks the Discord desktop client's local RPC protocol: framed
// JSON over a unix socket or a Windows named pipe.
package ipc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/fakeyudi/glint/internal/presence"
)

// DefaultTimeout bounds every read and write when ctx carries no deadline.
const DefaultTimeout = 5 * time.Second

// ErrNoCompanion is returned when no candidate socket could be opened.
var ErrNoCompanion = errors.New("ipc: discord is not running")

// CloseError is sent by the client when it refuses or ends a session.
type CloseError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *CloseError) Error() string {
	return fmt.Sprintf("ipc: closed by discord (%d): %s", e.Code, e.Message)
}

// CommandError is an ERROR event answering a command.
type CommandError struct {
	Cmd     string
	Code    int
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("ipc: %s rejected (%d): %s", e.Cmd, e.Code, e.Message)
}

// Rejected reports true: Discord refused the command but the channel is
// still usable.
func (e *CommandError) Rejected() bool { return true }

// Dialer opens sessions. The zero value dials the platform's default
// socket locations.
type Dialer struct {
	Timeout time.Duration
	// Candidates lists the socket paths to try, in order.
	Candidates func() []string
	// Dial opens one candidate path.
	Dial   func(ctx context.Context, path string) (io.ReadWriteCloser, error)
	Logger *slog.Logger
}

// Connect dials the first reachable socket and performs the handshake.
func (d *Dialer) Connect(ctx context.Context, clientID string) (*Client, error) {
	candidates := d.Candidates
	if candidates == nil {
		candidates = SocketPaths
	}
	dial := d.Dial
	if dial == nil {
		dial = dialSocket
	}

	var lastErr error
	for _, path := range candidates() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		conn, err := dial(ctx, path)
		if err != nil {
			lastErr = err
			continue
		}
		c := NewClient(conn, d.timeout())
		if err := c.handshake(ctx, clientID); err != nil {
			conn.Close()
			return nil, fmt.Errorf("handshake on %s: %w", path, err)
		}
		d.logger().Debug("ipc connected", "path", path)
		return c, nil
	}
	if lastErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoCompanion, lastErr)
	}
	return nil, ErrNoCompanion
}

func (d *Dialer) timeout() time.Duration {
	if d.Timeout > 0 {
		return d.Timeout
	}
	return DefaultTimeout
}

func (d *Dialer) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}

// Client is an open, handshaken session.
type Client struct {
	mu        sync.Mutex
	conn      io.ReadWriteCloser
	timeout   time.Duration
	pid       int
	closeOnce sync.Once
	closeErr  error
}

// NewClient wraps an already handshaken connection.
func NewClient(conn io.ReadWriteCloser, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{conn: conn, timeout: timeout, pid: os.Getpid()}
}

type handshake struct {
	V        int    `json:"v"`
	ClientID string `json:"client_id"`
}

// message is both an outbound command and an inbound response or event.
type message struct {
	Cmd   string          `json:"cmd"`
	Evt   string          `json:"evt,omitempty"`
	Nonce string          `json:"nonce,omitempty"`
	Args  any             `json:"args,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type errorData struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (c *Client) handshake(ctx context.Context, clientID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.setDeadline(ctx)
	if err := c.send(OpHandshake, handshake{V: 1, ClientID: clientID}); err != nil {
		return err
	}
	msg, err := c.receive()
	if err != nil {
		return err
	}
	if msg.Evt != "READY" {
		return fmt.Errorf("unexpected handshake reply %q", msg.Evt)
	}
	return nil
}

// wireActivity is the activity object Discord expects.
type wireActivity struct {
	Details    string      `json:"details,omitempty"`
	State      string      `json:"state,omitempty"`
	Timestamps *timestamps `json:"timestamps,omitempty"`
	Assets     *assets     `json:"assets,omitempty"`
}

type timestamps struct {
	Start int64 `json:"start"`
}

type assets struct {
	LargeImage string `json:"large_image,omitempty"`
	LargeText  string `json:"large_text,omitempty"`
	SmallImage string `json:"small_image,omitempty"`
	SmallText  string `json:"small_text,omitempty"`
}

// maxText is the longest details, state or asset text Discord accepts.
const maxText = 128

// clip shortens s to maxText characters, marking the cut with an ellipsis.
func clip(s string) string {
	if utf8.RuneCountInString(s) <= maxText {
		return s
	}
	return string([]rune(s)[:maxText-1]) + "…"
}

func toWire(a presence.Activity) wireActivity {
	w := wireActivity{Details: clip(a.Details), State: clip(a.State)}
	if a.Start != 0 {
		w.Timestamps = &timestamps{Start: a.Start}
	}
	if a.LargeImage != "" || a.LargeText != "" || a.SmallImage != "" || a.SmallText != "" {
		w.Assets = &assets{
			LargeImage: a.LargeImage,
			LargeText:  clip(a.LargeText),
			SmallImage: a.SmallImage,
			SmallText:  clip(a.SmallText),
		}
	}
	return w
}

type setActivityArgs struct {
	PID      int          `json:"pid"`
	Activity wireActivity `json:"activity"`
}

// SetActivity replaces the user's activity and waits for the reply.
func (c *Client) SetActivity(ctx context.Context, a presence.Activity) error {
	return c.command(ctx, "SET_ACTIVITY", setActivityArgs{PID: c.pid, Activity: toWire(a)})
}

func (c *Client) command(ctx context.Context, cmd string, args any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.setDeadline(ctx)
	nonce := uuid.NewString()
	if err := c.send(OpFrame, message{Cmd: cmd, Nonce: nonce, Args: args}); err != nil {
		return err
	}
	for {
		msg, err := c.receive()
		if err != nil {
			return err
		}
		if msg.Nonce != nonce {
			continue
		}
		if msg.Evt == "ERROR" {
			var ed errorData
			_ = json.Unmarshal(msg.Data, &ed)
			return &CommandError{Cmd: cmd, Code: ed.Code, Message: ed.Message}
		}
		return nil
	}
}

// Close sends a best-effort close frame and closes the connection.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.setDeadline(context.Background())
		_ = c.send(OpClose, struct{}{})
		c.closeErr = c.conn.Close()
	})
	return c.closeErr
}

func (c *Client) send(op Opcode, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	return WriteFrame(c.conn, Frame{Op: op, Data: data})
}

// receive returns the next command frame, answering pings on the way.
func (c *Client) receive() (message, error) {
	for {
		f, err := ReadFrame(c.conn)
		if err != nil {
			return message{}, err
		}
		switch f.Op {
		case OpPing:
			if err := WriteFrame(c.conn, Frame{Op: OpPong, Data: f.Data}); err != nil {
				return message{}, err
			}
		case OpPong:
		case OpClose:
			ce := &CloseError{}
			_ = json.Unmarshal(f.Data, ce)
			return message{}, ce
		case OpFrame:
			var msg message
			if err := json.Unmarshal(f.Data, &msg); err != nil {
				return message{}, fmt.Errorf("decode frame: %w", err)
			}
			return msg, nil
		default:
			return message{}, fmt.Errorf("unexpected opcode %d", f.Op)
		}
	}
}

type deadliner interface {
	SetDeadline(t time.Time) error
}

// setDeadline bounds the next exchange by ctx or the default timeout.
// Connections without deadline support are used as they are.
func (c *Client) setDeadline(ctx context.Context) {
	d, ok := c.conn.(deadliner)
	if !ok {
		return
	}
	deadline, has := ctx.Deadline()
	if !has {
		deadline = time.Now().Add(c.timeout)
	}
	_ = d.SetDeadline(deadline)
}
