package events

import "encoding/json"

// Message is the wire form delivered to every subscribed client session.
// Payload values marshal through encoding/json, so component payload types
// serialize via their struct tags (or json.Marshaler when they need to).
type Message struct {
	Source  string         `json:"source"`
	Action  string         `json:"action"`
	Payload map[string]any `json:"payload"`
}

// MessageFromEvent converts a bus event into its websocket wire form.
func MessageFromEvent(event Event) Message {
	payload := event.Payload
	if payload == nil {
		payload = map[string]any{}
	}
	return Message{
		Source:  event.Source,
		Action:  event.Action,
		Payload: payload,
	}
}

// Encode serializes the message once so a broadcast does not re-marshal per
// session.
func (m Message) Encode() ([]byte, error) {
	return json.Marshal(m)
}
