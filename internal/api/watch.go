package api

import (
	"encoding/json"

	"github.com/qlimitd/qlimitd/common"
	"github.com/qlimitd/qlimitd/internal/server"
)

// watchHandler subscribes the connection to evaluation events. Events are
// pushed as framed updates until the connection closes.
func (s *Api) watchHandler(sconn *server.SyncConn, pool *server.Pool, body json.RawMessage) (common.UpdateType, any, error) {
	pool.AddWatcher(sconn)
	return common.UPDATE_WATCH, nil, nil
}
