package dto

import "encoding/json"

type RegisterRequest struct {
	InvitationCode string `json:"invitationCode"`
	// Credential is the authenticator attestation response as produced by
	// the browser, forwarded verbatim.
	Credential json.RawMessage `json:"credential"`
}

type RegisterResponse struct {
	Verified bool   `json:"verified"`
	GroupID  string `json:"groupId,omitempty"`
}

type AuthenticateRequest struct {
	GroupID string `json:"groupId,omitempty"`
	// Credential is the authenticator assertion response, forwarded verbatim.
	Credential json.RawMessage `json:"credential"`
}

type AuthenticateResponse struct {
	Verified  bool   `json:"verified"`
	SessionID string `json:"sessionId,omitempty"`
}

type SessionResponse struct {
	GroupID string `json:"groupId"`
	Name    string `json:"name"`
}
