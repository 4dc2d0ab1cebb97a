// Package common provides shared types and constants used across the qlimitd
// client-server communication layer.
package common

import (
	"os"
	"path/filepath"
)

// Environment variable names for configuration.
const (
	// SocketPathEnv is the environment variable for a custom socket path.
	SocketPathEnv = "QLIMITD_SOCKET_PATH"

	// TCPPortEnv is the environment variable for a custom TCP port.
	TCPPortEnv = "QLIMITD_TCP_PORT"

	// ForceTCPEnv is the environment variable to force TCP connections.
	ForceTCPEnv = "QLIMITD_FORCE_TCP"

	// ConfigPathEnv is the environment variable for the config file path.
	ConfigPathEnv = "QLIMITD_CONFIG"
)

// SocketPath returns the control socket path, honouring SocketPathEnv.
func SocketPath() string {
	if path := os.Getenv(SocketPathEnv); path != "" {
		return path
	}
	return filepath.Join(os.TempDir(), "qlimitd.sock")
}

// PipePath returns the named pipe path used on Windows.
func PipePath() string {
	if path := os.Getenv(SocketPathEnv); path != "" {
		return path
	}
	return `\\.\pipe\qlimitd`
}

// ForceTCP reports whether the TCP transport is forced via environment.
func ForceTCP() bool {
	return os.Getenv(ForceTCPEnv) == "1"
}
