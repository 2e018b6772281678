package ipc

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Opcode identifies the kind of an IPC frame.
type Opcode uint32

// Opcodes understood by the Discord client.
const (
	OpHandshake Opcode = 0
	OpFrame     Opcode = 1
	OpClose     Opcode = 2
	OpPing      Opcode = 3
	OpPong      Opcode = 4
)

// MaxFramePayload limits individual frame payloads to 64KiB.
const MaxFramePayload = 64 << 10

const headerSize = 8

// Frame is one message on the IPC socket.
type Frame struct {
	Op   Opcode
	Data []byte // JSON
}

// WriteFrame writes f to w as a single write.
// Wire format: [opcode:4 LE][length:4 LE][payload].
func WriteFrame(w io.Writer, f Frame) error {
	if len(f.Data) > MaxFramePayload {
		return fmt.Errorf("write frame: payload of %d bytes exceeds %d", len(f.Data), MaxFramePayload)
	}
	buf := make([]byte, headerSize+len(f.Data))
	binary.LittleEndian.PutUint32(buf[0:4], uint32(f.Op))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(len(f.Data)))
	copy(buf[headerSize:], f.Data)
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

// ReadFrame reads one frame from r.
func ReadFrame(r io.Reader) (Frame, error) {
	header := make([]byte, headerSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return Frame{}, err
	}
	f := Frame{Op: Opcode(binary.LittleEndian.Uint32(header[0:4]))}
	length := binary.LittleEndian.Uint32(header[4:8])

	if f.Op > OpPong || length > MaxFramePayload {
		return Frame{}, fmt.Errorf("invalid frame: op=%d length=%d", f.Op, length)
	}
	if length > 0 {
		f.Data = make([]byte, length)
		if _, err := io.ReadFull(r, f.Data); err != nil {
			return Frame{}, fmt.Errorf("read frame data: %w", err)
		}
	}
	return f, nil
}
