package server

import (
	"context"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/handler"
	"github.com/creachadair/jrpc2/jhttp"
	"github.com/qlimitd/qlimitd/common"
)

// codeTriggerRejected is returned when the evaluation loop is not running
// or shut down before the trigger could be served.
const codeTriggerRejected = jrpc2.Code(-32001)

// Backend is the daemon surface exposed over JSON-RPC. The engine
// implements it.
type Backend interface {
	State() common.StateResponse
	RulesStatus() common.RulesResponse
	Trigger(ctx context.Context) bool
}

// RPCConfig holds configuration for the JSON-RPC endpoint.
type RPCConfig struct {
	Secret    string // Auth token (required -- empty means RPC disabled)
	Version   string
	Commit    string
	BuildType string
}

// RPCServer manages the JSON-RPC 2.0 bridge and method handlers.
type RPCServer struct {
	bridge    jhttp.Bridge
	methods   handler.Map
	secret    string
	version   string
	commit    string
	buildType string
	backend   Backend
}

// NewRPCServer creates an RPCServer with method handlers and HTTP bridge.
func NewRPCServer(cfg *RPCConfig, backend Backend) *RPCServer {
	rs := &RPCServer{
		secret:    cfg.Secret,
		version:   cfg.Version,
		commit:    cfg.Commit,
		buildType: cfg.BuildType,
		backend:   backend,
	}

	rs.methods = handler.Map{
		"system.getVersion":   handler.New(rs.systemGetVersion),
		"speedlimit.getState": handler.New(rs.speedlimitGetState),
		"speedlimit.getRules": handler.New(rs.speedlimitGetRules),
		"speedlimit.trigger":  handler.New(rs.speedlimitTrigger),
	}

	rs.bridge = jhttp.NewBridge(rs.methods, nil)
	return rs
}

func (rs *RPCServer) systemGetVersion(_ context.Context) (*common.VersionResponse, error) {
	return &common.VersionResponse{
		Version:   rs.version,
		Commit:    rs.commit,
		BuildType: rs.buildType,
	}, nil
}

// speedlimitGetState reports the limits currently in effect. The result
// mirrors the control-socket state contract: code 1 means not configured,
// code 0 with null data means no rule is active.
func (rs *RPCServer) speedlimitGetState(_ context.Context) (*common.StateResponse, error) {
	st := rs.backend.State()
	return &st, nil
}

func (rs *RPCServer) speedlimitGetRules(_ context.Context) (*common.RulesResponse, error) {
	resp := rs.backend.RulesStatus()
	return &resp, nil
}

func (rs *RPCServer) speedlimitTrigger(ctx context.Context) (*common.TriggerResponse, error) {
	if !rs.backend.Trigger(ctx) {
		return nil, &jrpc2.Error{Code: codeTriggerRejected, Message: "evaluation loop unavailable"}
	}
	return &common.TriggerResponse{Triggered: true}, nil
}

// Close shuts down the jrpc2 bridge, releasing internal goroutines.
func (rs *RPCServer) Close() {
	rs.bridge.Close()
}
