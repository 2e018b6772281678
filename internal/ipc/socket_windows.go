//go:build windows

package ipc

import (
	"context"
	"fmt"
	"io"

	"github.com/Microsoft/go-winio"
)

// SocketPaths lists the discord-ipc-0..9 named pipes.
func SocketPaths() []string {
	paths := make([]string, 0, 10)
	for i := 0; i < 10; i++ {
		paths = append(paths, fmt.Sprintf(`\\.\pipe\discord-ipc-%d`, i))
	}
	return paths
}

// dialSocket opens a named pipe. The returned net.Conn honours deadlines, so
// a hung Discord fails the exchange instead of blocking it.
func dialSocket(ctx context.Context, path string) (io.ReadWriteCloser, error) {
	return winio.DialPipeContext(ctx, path)
}
