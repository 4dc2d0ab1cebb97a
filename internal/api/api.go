// Package api wires the engine to the control socket: one handler per
// method, registered on the server's dispatch table.
package api

import (
	"context"

	"github.com/qlimitd/qlimitd/common"
	"github.com/qlimitd/qlimitd/internal/engine"
	"github.com/qlimitd/qlimitd/internal/server"
	"github.com/qlimitd/qlimitd/pkg/logger"
)

// ReloadFunc re-reads the configuration and installs the new rule list.
// It returns the number of rules now in effect.
type ReloadFunc func(context.Context) (int, error)

type Api struct {
	log    logger.Logger
	engine *engine.Engine
	reload ReloadFunc
	stop   func()

	version   string
	commit    string
	buildType string
}

// NewApi creates the handler set. reload and stop are supplied by the
// daemon; stop may be nil when remote shutdown is disabled.
func NewApi(l logger.Logger, eng *engine.Engine, reload ReloadFunc, stop func(), version, commit, buildType string) *Api {
	return &Api{
		log:       l,
		engine:    eng,
		reload:    reload,
		stop:      stop,
		version:   version,
		commit:    commit,
		buildType: buildType,
	}
}

func (s *Api) RegisterHandlers(srv *server.Server) {
	srv.RegisterHandler(common.UPDATE_STATE, s.stateHandler)
	srv.RegisterHandler(common.UPDATE_TRIGGER, s.triggerHandler)
	srv.RegisterHandler(common.UPDATE_RULES, s.rulesHandler)
	srv.RegisterHandler(common.UPDATE_RELOAD, s.reloadHandler)
	srv.RegisterHandler(common.UPDATE_WATCH, s.watchHandler)
	srv.RegisterHandler(common.UPDATE_VERSION, s.versionHandler)
	srv.RegisterHandler(common.UPDATE_STOP, s.stopHandler)
}
