package api

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/qlimitd/qlimitd/common"
	"github.com/qlimitd/qlimitd/internal/server"
)

const reloadTimeout = 30 * time.Second

// reloadHandler re-reads the configuration file and installs the new rule
// list. A failed read leaves the running rules untouched.
func (s *Api) reloadHandler(sconn *server.SyncConn, pool *server.Pool, body json.RawMessage) (common.UpdateType, any, error) {
	if s.reload == nil {
		return common.UPDATE_RELOAD, nil, errors.New("reload is not available")
	}
	ctx, cancel := context.WithTimeout(context.Background(), reloadTimeout)
	defer cancel()
	n, err := s.reload(ctx)
	if err != nil {
		return common.UPDATE_RELOAD, nil, err
	}
	s.log.Info("configuration reloaded, %d rules", n)
	return common.UPDATE_RELOAD, &common.ReloadResponse{RuleCount: n}, nil
}
