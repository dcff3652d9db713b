package eventbus

import (
	"encoding/json"
	"fmt"

	"github.com/amirasaad/econbot/pkg/eventbus"
)

// envelope is the wire form of an event on a stream.
type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func encode(event eventbus.Event) ([]byte, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", event.Type(), err)
	}
	return json.Marshal(envelope{Type: event.Type(), Payload: payload})
}

func decode(raw []byte, types map[string]eventbus.Factory) (eventbus.Event, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("unmarshal envelope: %w", err)
	}
	factory, ok := types[env.Type]
	if !ok {
		return nil, fmt.Errorf("unknown event type %q", env.Type)
	}
	evt := factory()
	if err := json.Unmarshal(env.Payload, evt); err != nil {
		return nil, fmt.Errorf("unmarshal %s payload: %w", env.Type, err)
	}
	// Handlers are routed by the payload's own type.
	if evt.Type() != env.Type {
		return nil, fmt.Errorf("payload type %q does not match envelope type %q", evt.Type(), env.Type)
	}
	return evt, nil
}
