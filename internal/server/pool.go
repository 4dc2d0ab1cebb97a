package server

import (
	"sync"

	"github.com/qlimitd/qlimitd/common"
	"github.com/qlimitd/qlimitd/pkg/logger"
)

// Pool tracks the connections that attached as watchers and broadcasts
// evaluation events to them. Connections are written through their
// SyncConn so broadcasts never interleave with in-flight responses.
type Pool struct {
	mu       sync.RWMutex
	watchers []*SyncConn
	log      logger.Logger
}

func NewPool(l logger.Logger) *Pool {
	return &Pool{log: l}
}

// AddWatcher subscribes conn to evaluation events. Adding the same
// connection twice is a no-op.
func (p *Pool) AddWatcher(conn *SyncConn) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, w := range p.watchers {
		if w == conn {
			return
		}
	}
	p.watchers = append(p.watchers, conn)
}

// RemoveWatcher unsubscribes conn. Called when a connection closes.
func (p *Pool) RemoveWatcher(conn *SyncConn) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, w := range p.watchers {
		if w == conn {
			p.watchers[i] = p.watchers[len(p.watchers)-1]
			p.watchers = p.watchers[:len(p.watchers)-1]
			return
		}
	}
}

// WatcherCount returns the number of attached watchers.
func (p *Pool) WatcherCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.watchers)
}

// Broadcast pushes data to every watcher. Watchers that fail to receive
// are dropped from the pool and closed.
func (p *Pool) Broadcast(data []byte) {
	p.mu.RLock()
	watchers := make([]*SyncConn, len(p.watchers))
	copy(watchers, p.watchers)
	p.mu.RUnlock()

	var failed []*SyncConn
	for _, w := range watchers {
		if err := w.Write(data); err != nil {
			p.log.Warning("dropping watcher: %s", err.Error())
			failed = append(failed, w)
		}
	}
	for _, w := range failed {
		p.RemoveWatcher(w)
		_ = w.Conn.Close()
	}
}

// BroadcastEvent marshals ev as an event update and pushes it to every
// watcher.
func (p *Pool) BroadcastEvent(ev common.EventResponse) {
	p.Broadcast(MakeResult(common.UPDATE_EVENT, &ev))
}
