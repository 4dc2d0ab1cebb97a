package api

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/qlimitd/qlimitd/common"
	"github.com/qlimitd/qlimitd/internal/server"
)

// stopHandler shuts the daemon down. The acknowledgement is written
// before the stop fires so the client sees a clean response.
func (s *Api) stopHandler(sconn *server.SyncConn, pool *server.Pool, body json.RawMessage) (common.UpdateType, any, error) {
	if s.stop == nil {
		return common.UPDATE_STOP, nil, errors.New("remote shutdown is disabled")
	}
	s.log.Info("stop requested over control socket")
	go func() {
		time.Sleep(100 * time.Millisecond)
		s.stop()
	}()
	return common.UPDATE_STOP, nil, nil
}
