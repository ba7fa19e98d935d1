package gateway

import "encoding/json"

const (
	frameOpened      = "opened"
	framePairingCode = "pairing_code"
	frameError       = "error"
	frameHealth      = "health"
	frameIdentity    = "identity"
	frameCreds       = "creds"
	frameClosed      = "closed"

	frameClose  = "close"
	frameLogout = "logout"
)

// frame is the JSON envelope exchanged with the gateway.
type frame struct {
	Type      string          `json:"type"`
	Code      string          `json:"code,omitempty"`
	Healthy   bool            `json:"healthy,omitempty"`
	Name      string          `json:"name,omitempty"`
	JID       string          `json:"jid,omitempty"`
	Creds     json.RawMessage `json:"creds,omitempty"`
	LoggedOut bool            `json:"logged_out,omitempty"`
	Error     string          `json:"error,omitempty"`
}
