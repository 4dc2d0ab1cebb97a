package limitcli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/qlimitd/qlimitd/common"
)

type Dispatcher struct {
	Handlers map[common.UpdateType]Handler
}

// ErrDisconnect stops Listen without reporting an error.
var ErrDisconnect error = errors.New("disconnect")

// RegisterHandler routes updates of the given type to h.
func (d *Dispatcher) RegisterHandler(utype common.UpdateType, h Handler) {
	if d.Handlers == nil {
		d.Handlers = make(map[common.UpdateType]Handler)
	}
	d.Handlers[utype] = h
}

func (d *Dispatcher) process(buf []byte) error {
	var res Response
	if err := json.Unmarshal(buf, &res); err != nil {
		return fmt.Errorf("failed to parse (%s): '%s'", err.Error(), string(buf))
	}
	if !res.Ok {
		return errors.New(res.Error)
	}
	if res.Update == nil {
		return nil
	}
	if h, ok := d.Handlers[res.Update.Type]; ok {
		return h.Handle(res.Update.Message)
	}
	return nil
}
