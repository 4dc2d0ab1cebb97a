package server

import (
	"encoding/json"

	"github.com/qlimitd/qlimitd/common"
)

// HandlerFunc is the signature of a control-socket method handler. It
// receives the synchronized connection, the watcher pool and the raw JSON
// message body, and returns the update type of the response, the response
// payload and any error.
type HandlerFunc func(
	conn *SyncConn,
	pool *Pool,
	body json.RawMessage,
) (
	common.UpdateType,
	any,
	error,
)
