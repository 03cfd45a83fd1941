package service

import (
	"context"

	"groupauth/internal/dto"
)

type RegistrationService interface {
	// Options resolves the group by invitation code, issues a registration
	// challenge, and returns the creation options.
	Options(ctx context.Context, invitationCode string) (*dto.RegistrationOptionsResponse, error)

	// Register verifies an attestation response against an active challenge
	// and, on success, binds the new authenticator to the group. A failed
	// verification is reported via Verified=false, not via error.
	Register(ctx context.Context, r dto.RegisterRequest) (*dto.RegisterResponse, error)
}
