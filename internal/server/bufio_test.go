package server

import (
	"bytes"
	"net"
	"sync"
	"testing"

	"github.com/qlimitd/qlimitd/common"
)

func TestIntBytesRoundTrip(t *testing.T) {
	for _, v := range []uint32{0, 1, 255, 256, 65536, 1<<24 - 1, 1 << 31} {
		if got := bytesToInt(intToBytes(v)); got != v {
			t.Errorf("round trip of %d gave %d", v, got)
		}
	}
}

func TestReadWriteFraming(t *testing.T) {
	client, srv := net.Pipe()
	defer client.Close()
	defer srv.Close()

	payload := []byte(`{"method":"state"}`)
	var wmu, rmu sync.Mutex

	done := make(chan error, 1)
	go func() {
		done <- write(&wmu, client, payload)
	}()
	got, err := read(&rmu, srv)
	if err != nil {
		t.Fatalf("read failed: %s", err)
	}
	if err := <-done; err != nil {
		t.Fatalf("write failed: %s", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("got %q, want %q", got, payload)
	}
}

func TestReadRejectsOversizedFrame(t *testing.T) {
	client, srv := net.Pipe()
	defer client.Close()
	defer srv.Close()

	go func() {
		_, _ = client.Write(intToBytes(common.MaxMessageSize + 1))
	}()
	var rmu sync.Mutex
	if _, err := read(&rmu, srv); err == nil {
		t.Fatal("expected oversized frame to be rejected")
	}
}

func TestReadEmptyFrame(t *testing.T) {
	client, srv := net.Pipe()
	defer client.Close()
	defer srv.Close()

	var wmu, rmu sync.Mutex
	go func() {
		_ = write(&wmu, client, nil)
	}()
	got, err := read(&rmu, srv)
	if err != nil {
		t.Fatalf("read failed: %s", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty payload, got %q", got)
	}
}
