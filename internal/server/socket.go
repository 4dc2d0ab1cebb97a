package server

import "github.com/qlimitd/qlimitd/common"

func socketPath() string {
	return common.SocketPath()
}
