package limitcli

import (
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/qlimitd/qlimitd/common"
)

// dialFunc is swappable in tests.
var dialFunc = net.Dial

// tcpPort returns the TCP port from the environment or the default.
func tcpPort() int {
	if port := os.Getenv(common.TCPPortEnv); port != "" {
		if p, err := strconv.Atoi(port); err == nil && p >= 1 && p <= 65535 {
			return p
		}
	}
	return common.DefaultTCPPort
}

func tcpAddress() string {
	return fmt.Sprintf("%s:%d", common.TCPHost, tcpPort())
}
