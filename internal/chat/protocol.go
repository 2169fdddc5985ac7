package chat

import "encoding/json"

// Event names exchanged over the persistent connection.
const (
	// client -> server
	EventAuthenticate = "authenticate"
	EventSendMessage  = "send_message"
	EventTyping       = "typing"

	// server -> client
	EventAuthenticated  = "authenticated"
	EventAuthError      = "auth_error"
	EventMessageHistory = "message_history"
	EventNewMessage     = "new_message"
	EventUserTyping     = "user_typing"
	EventUserJoined     = "user_joined"
	EventUserLeft       = "user_left"
	EventError          = "error"
)

// Envelope is the wire framing for every event in both directions.
type Envelope struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// AuthenticatePayload carries the opaque session token.
type AuthenticatePayload struct {
	Token string `json:"token"`
}

// SendMessagePayload carries the text of an outbound message.
type SendMessagePayload struct {
	Text string `json:"text"`
}

// NamePayload carries a display name, used by the authenticated event and
// all presence announcements.
type NamePayload struct {
	Name string `json:"name"`
}

// ErrorPayload carries a human-readable failure description.
type ErrorPayload struct {
	Message string `json:"message"`
}

// Encode wraps a payload in an Envelope and marshals it for the wire.
func Encode(event string, payload any) ([]byte, error) {
	env := Envelope{Event: event}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		env.Payload = raw
	}
	return json.Marshal(env)
}
