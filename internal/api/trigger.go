package api

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/qlimitd/qlimitd/common"
	"github.com/qlimitd/qlimitd/internal/server"
)

const triggerTimeout = 30 * time.Second

// triggerHandler forces an immediate re-evaluation and waits for it to
// complete.
func (s *Api) triggerHandler(sconn *server.SyncConn, pool *server.Pool, body json.RawMessage) (common.UpdateType, any, error) {
	ctx, cancel := context.WithTimeout(context.Background(), triggerTimeout)
	defer cancel()
	if !s.engine.Trigger(ctx) {
		return common.UPDATE_TRIGGER, nil, errors.New("evaluation loop unavailable")
	}
	return common.UPDATE_TRIGGER, &common.TriggerResponse{Triggered: true}, nil
}
