package server

import (
	"context"
	"sync"

	"github.com/creachadair/jrpc2"
	"github.com/qlimitd/qlimitd/common"
	"github.com/qlimitd/qlimitd/pkg/logger"
)

// methodEvent is the notification pushed to WebSocket clients on every
// completed evaluation cycle.
const methodEvent = "speedlimit.event"

// RPCNotifier maintains the set of connected jrpc2 WebSocket servers and
// broadcasts push notifications to all of them.
type RPCNotifier struct {
	mu      sync.RWMutex
	servers map[*jrpc2.Server]struct{}
	log     logger.Logger
}

// NewRPCNotifier creates a new notifier.
func NewRPCNotifier(l logger.Logger) *RPCNotifier {
	return &RPCNotifier{
		servers: make(map[*jrpc2.Server]struct{}),
		log:     l,
	}
}

// Register adds a server to the broadcast set.
func (n *RPCNotifier) Register(srv *jrpc2.Server) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.servers[srv] = struct{}{}
}

// Unregister removes a server from the broadcast set.
func (n *RPCNotifier) Unregister(srv *jrpc2.Server) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.servers, srv)
}

// BroadcastEvent pushes an evaluation event to every registered server.
// Servers that fail to receive are unregistered.
func (n *RPCNotifier) BroadcastEvent(ev common.EventResponse) {
	n.mu.RLock()
	servers := make([]*jrpc2.Server, 0, len(n.servers))
	for srv := range n.servers {
		servers = append(servers, srv)
	}
	n.mu.RUnlock()

	var failed []*jrpc2.Server
	for _, srv := range servers {
		if err := srv.Notify(context.Background(), methodEvent, &ev); err != nil {
			if n.log != nil {
				n.log.Warning("rpc push failed: %s", err.Error())
			}
			failed = append(failed, srv)
		}
	}

	if len(failed) > 0 {
		n.mu.Lock()
		for _, srv := range failed {
			delete(n.servers, srv)
		}
		n.mu.Unlock()
	}
}

// Count returns the number of registered servers.
func (n *RPCNotifier) Count() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.servers)
}
