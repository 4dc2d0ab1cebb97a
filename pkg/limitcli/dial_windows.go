//go:build windows

package limitcli

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/Microsoft/go-winio"
	"github.com/qlimitd/qlimitd/common"
)

const dialTimeout = 5 * time.Second

// dialPipeFunc is swappable in tests.
var dialPipeFunc = dialPipeImpl

func dialPipeImpl(path string) (net.Conn, error) {
	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()
	return winio.DialPipeContext(ctx, path)
}

// dial connects to the daemon over its named pipe, falling back to TCP.
// Transport priority: Named pipe > TCP.
func dial() (net.Conn, error) {
	if common.ForceTCP() {
		return dialFunc("tcp", tcpAddress())
	}
	conn, pipeErr := dialPipeFunc(common.PipePath())
	if pipeErr != nil {
		conn, err := dialFunc("tcp", tcpAddress())
		if err != nil {
			return nil, fmt.Errorf("failed to connect: named pipe error: %v; tcp error: %w", pipeErr, err)
		}
		return conn, nil
	}
	return conn, nil
}
