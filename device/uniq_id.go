// Package device identifies the host an engine instance is running on,
// so multiple relays on the same LAN can be told apart in logs without
// relying on a hostname the user might not have set.
package device

import (
	"crypto/rand"
	"encoding/hex"
	"os"
	"path/filepath"
	"runtime"
)

// InstanceID returns a stable identifier for the current host: a
// platform serial/machine-id when one is available, falling back to
// the primary interface's MAC address, and finally to a random ID
// persisted in the file deviceIDPath names. engine.New attaches this to
// every engine log line (field "instance") so a multi-relay LAN party's
// logs can be told apart.
func InstanceID() string {
	raw := uniqIDRaw()
	if raw != "" {
		return raw
	}

	path := deviceIDPath()
	if id, err := os.ReadFile(path); err == nil {
		return string(id)
	}

	b := make([]byte, 8) // 64-bit random → 16 hex chars
	_, _ = rand.Read(b)
	id := hex.EncodeToString(b)

	_ = os.WriteFile(path, []byte(id), 0644)
	return id
}

// deviceIDPath decides where to store the fallback random ID file.
func deviceIDPath() string {
	if runtime.GOOS == "linux" {
		if _, err := os.Stat("/etc"); err == nil {
			return "/etc/battlelan-relay-id"
		}
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "battlelan-relay-id")
	}
	return filepath.Join(home, ".battlelan-relay-id")
}
