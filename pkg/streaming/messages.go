package streaming

import (
	"encoding/json"
	"fmt"

	"github.com/ets2dash/tdashboard/pkg/core"
)

// Message type constants matching the streaming protocol.
const (
	TypeStartSession = "start_session"
	TypeFrame        = "frame"
	TypeEndSession   = "end_session"
	TypeAck          = "ack"
)

// Envelope wraps all messages sent over the WebSocket.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// AckMessage is the server's acknowledgement response.
type AckMessage struct {
	Type string `json:"type"` // always "ack"
	For  string `json:"for"`  // the message type being acknowledged
}

// StartSessionPayload opens a session on the receiving side.
type StartSessionPayload struct {
	Session *core.Session `json:"session"`
}

// FramePayload carries one formatted tick.
type FramePayload struct {
	Frame *core.Frame `json:"frame"`
}

// EndSessionPayload closes the session identified by SessionID.
type EndSessionPayload struct {
	SessionID  string `json:"sessionId"`
	FrameCount uint64 `json:"frameCount"`
}

// NewEnvelope marshals payload and wraps it with msgType.
func NewEnvelope(msgType string, payload any) (Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal %s payload: %w", msgType, err)
	}
	return Envelope{Type: msgType, Payload: data}, nil
}

// RequiresAck reports whether the server acknowledges messages of msgType.
func RequiresAck(msgType string) bool {
	return msgType == TypeStartSession || msgType == TypeEndSession
}
