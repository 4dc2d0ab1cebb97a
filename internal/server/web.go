package server

import (
	"context"
	"net/http"
	"sync"

	cws "github.com/coder/websocket"
	"github.com/creachadair/jrpc2"
	"github.com/qlimitd/qlimitd/pkg/logger"
)

// WebServer serves the JSON-RPC endpoint: POST /jsonrpc for plain HTTP
// calls and GET /jsonrpc/ws for a WebSocket session with push
// notifications. Both require the configured Bearer secret.
type WebServer struct {
	addr     string
	log      logger.Logger
	rpc      *RPCServer
	notifier *RPCNotifier
	server   *http.Server
	mu       sync.Mutex
}

// NewWebServer creates a WebServer bound to addr, serving the methods of
// rpc.
func NewWebServer(l logger.Logger, addr string, rpc *RPCServer) *WebServer {
	return &WebServer{
		addr:     addr,
		log:      l,
		rpc:      rpc,
		notifier: NewRPCNotifier(l),
	}
}

// Notifier returns the push-notification broadcaster for WebSocket
// sessions.
func (ws *WebServer) Notifier() *RPCNotifier {
	return ws.notifier
}

func (ws *WebServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/jsonrpc", requireToken(ws.rpc.secret, ws.rpc.bridge))
	mux.HandleFunc("/jsonrpc/ws", ws.handleWS)
	return mux
}

// handleWS upgrades an authenticated request to a WebSocket and runs a
// jrpc2 server over it until the client disconnects.
func (ws *WebServer) handleWS(w http.ResponseWriter, r *http.Request) {
	if !validToken(ws.rpc.secret, r.Header.Get("Authorization")) {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	conn, err := cws.Accept(w, r, nil)
	if err != nil {
		ws.log.Warning("websocket accept failed: %s", err.Error())
		return
	}

	ch := &wsChannel{conn: conn, ctx: r.Context()}
	srv := jrpc2.NewServer(ws.rpc.methods, &jrpc2.ServerOptions{AllowPush: true})
	srv.Start(ch)
	ws.notifier.Register(srv)
	defer ws.notifier.Unregister(srv)
	srv.Wait()
}

// Start runs the HTTP server and blocks until shutdown.
func (ws *WebServer) Start() error {
	ws.mu.Lock()
	ws.server = &http.Server{
		Addr:    ws.addr,
		Handler: ws.handler(),
	}
	ws.mu.Unlock()

	err := ws.server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully stops the web server and the RPC bridge.
func (ws *WebServer) Shutdown(ctx context.Context) error {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	ws.rpc.Close()
	if ws.server == nil {
		return nil
	}
	return ws.server.Shutdown(ctx)
}
