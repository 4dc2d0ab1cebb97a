package api

import (
	"encoding/json"

	"github.com/qlimitd/qlimitd/common"
	"github.com/qlimitd/qlimitd/internal/server"
)

// stateHandler reports the limits currently in effect. Code 1 means the
// limiter has no rules configured; code 0 with null data means no rule is
// active right now.
func (s *Api) stateHandler(sconn *server.SyncConn, pool *server.Pool, body json.RawMessage) (common.UpdateType, any, error) {
	st := s.engine.State()
	return common.UPDATE_STATE, &st, nil
}
