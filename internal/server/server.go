// Package server implements the daemon's control surface: a framed JSON
// protocol over a Unix socket (named pipe on Windows) for the CLI, and an
// optional authenticated JSON-RPC 2.0 endpoint over HTTP/WebSocket.
package server

import (
	"context"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/qlimitd/qlimitd/common"
	"github.com/qlimitd/qlimitd/pkg/logger"
)

// Server accepts control connections from CLI clients and dispatches
// incoming requests to registered handlers.
type Server struct {
	log      logger.Logger
	pool     *Pool
	ws       *WebServer
	handler  map[common.UpdateType]HandlerFunc
	port     int
	listener net.Listener
	mu       sync.Mutex
}

// NewServer creates a Server listening on the platform socket, falling
// back to TCP on port. ws may be nil when the HTTP endpoint is disabled.
func NewServer(l logger.Logger, port int, ws *WebServer) *Server {
	return &Server{
		log:     l,
		pool:    NewPool(l),
		handler: make(map[common.UpdateType]HandlerFunc),
		port:    port,
		ws:      ws,
	}
}

// Pool returns the watcher pool, the broadcast target for evaluation
// events.
func (s *Server) Pool() *Pool {
	return s.pool
}

// RegisterHandler associates a handler with a method. Requests with that
// method are dispatched to it.
func (s *Server) RegisterHandler(method common.UpdateType, handler HandlerFunc) {
	s.handler[method] = handler
}

// Start begins accepting connections and blocks until ctx is cancelled.
// Each connection is served in its own goroutine.
func (s *Server) Start(ctx context.Context) error {
	if s.ws != nil {
		go func() {
			if err := s.ws.Start(); err != nil {
				s.log.Error("web server: %s", err.Error())
			}
		}()
	}

	l, err := s.createListener()
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.listener = l
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		_ = s.Shutdown()
	}()

	for {
		conn, err := l.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			s.log.Error("accepting connection: %s", err.Error())
			continue
		}
		go s.handleConnection(conn)
	}
}

// Shutdown closes the listener, the web server and the socket file.
func (s *Server) Shutdown() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		if err := s.listener.Close(); err != nil {
			s.log.Error("closing listener: %s", err.Error())
		}
		s.listener = nil
	}

	if s.ws != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.ws.Shutdown(shutdownCtx); err != nil {
			s.log.Error("shutting down web server: %s", err.Error())
		}
	}

	if err := cleanupSocket(); err != nil {
		s.log.Error("removing socket file: %s", err.Error())
	}
	return nil
}

func (s *Server) handleConnection(conn net.Conn) {
	sconn := NewSyncConn(conn)
	defer func() {
		s.pool.RemoveWatcher(sconn)
		_ = conn.Close()
	}()
	for {
		buf, err := sconn.Read()
		if err != nil {
			if err != io.EOF {
				s.log.Error("reading request: %s", err.Error())
			}
			return
		}
		if err := s.handlerWrapper(sconn, buf); err != nil {
			s.log.Error("handling request: %s", err.Error())
			return
		}
	}
}

func (s *Server) handlerWrapper(sconn *SyncConn, b []byte) error {
	req, err := ParseRequest(b)
	if err != nil {
		return fmt.Errorf("error parsing request: %s", err.Error())
	}
	rHandler, ok := s.handler[req.Method]
	if !ok {
		if err := sconn.Write(CreateError("unknown method: " + string(req.Method))); err != nil {
			return fmt.Errorf("error writing response: %s", err.Error())
		}
		return nil
	}
	utype, msg, err := rHandler(sconn, s.pool, req.Message)
	if err != nil {
		if err := sconn.Write(InitError(err)); err != nil {
			return fmt.Errorf("error writing response: %s", err.Error())
		}
		return nil
	}
	if err := sconn.Write(MakeResult(utype, msg)); err != nil {
		return fmt.Errorf("error writing response: %s", err.Error())
	}
	return nil
}
