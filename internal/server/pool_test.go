package server

import (
	"encoding/json"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/qlimitd/qlimitd/common"
	"github.com/qlimitd/qlimitd/pkg/logger"
)

func TestPoolAddRemoveWatcher(t *testing.T) {
	p := NewPool(logger.NewNopLogger())
	c1, _ := net.Pipe()
	c2, _ := net.Pipe()
	s1, s2 := NewSyncConn(c1), NewSyncConn(c2)

	p.AddWatcher(s1)
	p.AddWatcher(s1) // duplicate is a no-op
	p.AddWatcher(s2)
	if p.WatcherCount() != 2 {
		t.Fatalf("expected 2 watchers, got %d", p.WatcherCount())
	}

	p.RemoveWatcher(s1)
	if p.WatcherCount() != 1 {
		t.Fatalf("expected 1 watcher after removal, got %d", p.WatcherCount())
	}
	p.RemoveWatcher(s1) // already removed
	if p.WatcherCount() != 1 {
		t.Fatalf("expected removal to be idempotent, got %d", p.WatcherCount())
	}
}

func TestPoolBroadcastEvent(t *testing.T) {
	p := NewPool(logger.NewNopLogger())
	client, srv := net.Pipe()
	defer client.Close()
	defer srv.Close()

	p.AddWatcher(NewSyncConn(srv))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		p.BroadcastEvent(common.EventResponse{
			Action:     common.EventApplied,
			UploadText: "1.0MB/s",
			At:         time.Now(),
		})
	}()

	var rmu sync.Mutex
	data, err := read(&rmu, client)
	if err != nil {
		t.Fatalf("reading broadcast: %s", err)
	}
	wg.Wait()

	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		t.Fatalf("unmarshal broadcast: %s", err)
	}
	if !resp.Ok || resp.Update == nil || resp.Update.Type != common.UPDATE_EVENT {
		t.Fatalf("unexpected broadcast payload: %+v", resp)
	}
}

func TestPoolDropsFailedWatcher(t *testing.T) {
	p := NewPool(logger.NewNopLogger())
	client, srv := net.Pipe()
	client.Close()
	srv.Close()

	p.AddWatcher(NewSyncConn(srv))
	p.Broadcast([]byte("payload"))
	if p.WatcherCount() != 0 {
		t.Errorf("expected failed watcher to be dropped, got %d", p.WatcherCount())
	}
	_ = client
}
