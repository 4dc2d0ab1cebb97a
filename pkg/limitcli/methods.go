package limitcli

import (
	"encoding/json"

	"github.com/qlimitd/qlimitd/common"
)

func invoke[T any](c *Client, method common.UpdateType, message any) (*T, error) {
	resp, err := c.invoke(method, message)
	if err != nil {
		return nil, err
	}
	var d T
	return &d, json.Unmarshal(resp, &d)
}

// State returns the limits currently in effect.
func (c *Client) State() (*common.StateResponse, error) {
	return invoke[common.StateResponse](c, common.UPDATE_STATE, nil)
}

// Trigger forces an immediate re-evaluation and waits for it to finish.
func (c *Client) Trigger() (*common.TriggerResponse, error) {
	return invoke[common.TriggerResponse](c, common.UPDATE_TRIGGER, nil)
}

// Rules lists the configured rules with their evaluation status.
func (c *Client) Rules() (*common.RulesResponse, error) {
	return invoke[common.RulesResponse](c, common.UPDATE_RULES, nil)
}

// Reload makes the daemon re-read its configuration file.
func (c *Client) Reload() (*common.ReloadResponse, error) {
	return invoke[common.ReloadResponse](c, common.UPDATE_RELOAD, nil)
}

// Version returns the daemon's version information.
func (c *Client) Version() (*common.VersionResponse, error) {
	return invoke[common.VersionResponse](c, common.UPDATE_VERSION, nil)
}

// StopDaemon asks the daemon to shut down.
func (c *Client) StopDaemon() error {
	_, err := c.invoke(common.UPDATE_STOP, nil)
	return err
}

// Watch subscribes to evaluation events. Pushed events are delivered to
// handler; the call blocks until the connection closes or the handler
// returns ErrDisconnect.
func (c *Client) Watch(handler Handler) error {
	if _, err := c.invoke(common.UPDATE_WATCH, nil); err != nil {
		return err
	}
	c.d.RegisterHandler(common.UPDATE_EVENT, handler)
	return c.Listen()
}
