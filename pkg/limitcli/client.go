// Package limitcli is the client library for the qlimitd control socket.
// It frames JSON requests over the daemon's Unix socket (named pipe on
// Windows, TCP fallback) and decodes the typed responses.
package limitcli

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/qlimitd/qlimitd/common"
)

type Client struct {
	mu   *sync.RWMutex
	d    *Dispatcher
	conn net.Conn
}

// NewClient connects to the daemon and returns a ready client.
func NewClient() (*Client, error) {
	conn, err := dial()
	if err != nil {
		return nil, fmt.Errorf("error connecting to daemon: %s", err.Error())
	}
	return &Client{
		conn: conn,
		mu:   &sync.RWMutex{},
		d:    &Dispatcher{},
	}, nil
}

// Close closes the connection to the daemon.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Dispatcher returns the update dispatcher used by Listen. Register
// handlers on it before calling Listen.
func (c *Client) Dispatcher() *Dispatcher {
	return c.d
}

// Listen blocks reading pushed updates and dispatching them to registered
// handlers until the connection closes or a handler returns ErrDisconnect.
func (c *Client) Listen() (err error) {
	defer c.conn.Close()
	for {
		c.mu.RLock()
		var buf []byte
		buf, err = read(c.conn)
		if err != nil {
			c.mu.RUnlock()
			return fmt.Errorf("error reading: %s", err.Error())
		}
		err = c.d.process(buf)
		c.mu.RUnlock()
		if err != nil {
			if err == ErrDisconnect {
				return nil
			}
			return fmt.Errorf("error processing: %s", err.Error())
		}
	}
}

func (c *Client) invoke(method common.UpdateType, message any) (json.RawMessage, error) {
	// block the updates listener while invoking a method so the reply is
	// consumed here instead
	c.mu.Lock()
	defer c.mu.Unlock()
	buf, err := json.Marshal(&Request{
		Method:  method,
		Message: message,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to invoke %s: %s", method, err.Error())
	}
	if err = write(c.conn, buf); err != nil {
		return nil, fmt.Errorf("failed to invoke %s: %s", method, err.Error())
	}
	buf, err = read(c.conn)
	if err != nil {
		return nil, fmt.Errorf("failed to invoke %s: %s", method, err.Error())
	}
	var res Response
	if err = json.Unmarshal(buf, &res); err != nil {
		return nil, fmt.Errorf("failed to read %s: %s", method, err.Error())
	}
	if !res.Ok {
		return nil, errors.New(res.Error)
	}
	if res.Update == nil {
		return nil, nil
	}
	return res.Update.Message, nil
}
