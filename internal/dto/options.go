package dto

import "github.com/go-webauthn/webauthn/protocol"

type RegistrationOptionsRequest struct {
	InvitationCode string `json:"invitationCode"`
}

// RegistrationOptionsResponse carries the creation options produced for the
// client's navigator.credentials.create call.
type RegistrationOptionsResponse struct {
	GroupID string                       `json:"groupId"`
	Options *protocol.CredentialCreation `json:"options"`
}

type AuthenticationOptionsRequest struct {
	// GroupID is optional; when empty the handler falls back to the
	// script-readable group cookie.
	GroupID string `json:"groupId,omitempty"`
	// InvitationCode lets a device that never stored the group cookie start
	// an authentication ceremony from the shared code instead.
	InvitationCode string `json:"invitationCode,omitempty"`
}

type AuthenticationOptionsResponse struct {
	GroupID string                        `json:"groupId"`
	Options *protocol.CredentialAssertion `json:"options"`
}
