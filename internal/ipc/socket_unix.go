//go:build !windows

package ipc

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
)

// sandboxDirs are where snap and flatpak builds of Discord put their socket,
// relative to the runtime directory.
var sandboxDirs = []string{
	"",
	"snap.discord",
	"app/com.discordapp.Discord",
	"app/com.discordapp.DiscordCanary",
}

// SocketPaths lists discord-ipc-0..9 under every runtime directory candidate.
func SocketPaths() []string {
	var bases []string
	seen := map[string]bool{}
	for _, env := range []string{"XDG_RUNTIME_DIR", "TMPDIR", "TMP", "TEMP"} {
		if v := os.Getenv(env); v != "" && !seen[v] {
			seen[v] = true
			bases = append(bases, v)
		}
	}
	if !seen["/tmp"] {
		bases = append(bases, "/tmp")
	}

	var paths []string
	for _, base := range bases {
		for _, sub := range sandboxDirs {
			for i := 0; i < 10; i++ {
				paths = append(paths, filepath.Join(base, sub, fmt.Sprintf("discord-ipc-%d", i)))
			}
		}
	}
	return paths
}

func dialSocket(ctx context.Context, path string) (io.ReadWriteCloser, error) {
	var d net.Dialer
	return d.DialContext(ctx, "unix", path)
}
