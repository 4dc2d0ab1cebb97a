//go:build !windows

package limitcli

import (
	"fmt"
	"net"

	"github.com/qlimitd/qlimitd/common"
)

// dial connects to the daemon over its Unix socket, falling back to TCP.
// Transport priority: Unix socket > TCP.
func dial() (net.Conn, error) {
	if common.ForceTCP() {
		return dialFunc("tcp", tcpAddress())
	}
	conn, unixErr := dialFunc("unix", common.SocketPath())
	if unixErr != nil {
		conn, err := dialFunc("tcp", tcpAddress())
		if err != nil {
			return nil, fmt.Errorf("failed to connect: unix socket error: %v; tcp error: %w", unixErr, err)
		}
		return conn, nil
	}
	return conn, nil
}
