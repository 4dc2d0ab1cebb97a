package limitcli

import (
	"encoding/json"

	"github.com/qlimitd/qlimitd/common"
)

// Handler processes pushed daemon updates. Implementations receive the
// raw JSON message and are responsible for unmarshaling it.
type Handler interface {
	Handle(json.RawMessage) error
}

// NewEventHandler creates a handler for evaluation events. The action
// parameter filters events to those matching it; pass an empty string to
// receive all actions.
func NewEventHandler(action common.EventAction, callback func(*common.EventResponse) error) *EventHandler {
	return &EventHandler{
		Action:   action,
		Callback: callback,
	}
}

// EventHandler dispatches evaluation events pushed by the daemon to a
// callback, optionally filtered by action.
type EventHandler struct {
	Action   common.EventAction
	Callback func(*common.EventResponse) error
}

func (h *EventHandler) Handle(m json.RawMessage) error {
	var v common.EventResponse
	if err := json.Unmarshal(m, &v); err != nil {
		return err
	}
	if h.Action != "" && v.Action != h.Action {
		return nil
	}
	return h.Callback(&v)
}
