package api

import (
	"encoding/json"

	"github.com/qlimitd/qlimitd/common"
	"github.com/qlimitd/qlimitd/internal/server"
)

func (s *Api) rulesHandler(sconn *server.SyncConn, pool *server.Pool, body json.RawMessage) (common.UpdateType, any, error) {
	resp := s.engine.RulesStatus()
	return common.UPDATE_RULES, &resp, nil
}
