package service

import (
	"context"

	"groupauth/internal/domain"
	"groupauth/internal/dto"
)

type AuthenticationService interface {
	// Options issues an authentication challenge for the group and returns
	// the assertion options, listing the group's registered credentials.
	Options(ctx context.Context, groupID domain.GroupID) (*dto.AuthenticationOptionsResponse, error)

	// OptionsByInvitationCode is Options for a caller that only knows the
	// group's invitation code.
	OptionsByInvitationCode(ctx context.Context, invitationCode string) (*dto.AuthenticationOptionsResponse, error)

	// Authenticate verifies an assertion response against an active
	// challenge and the matched authenticator's stored public key. On
	// success it creates a session and advances the stored sign counter.
	// Cryptographic and challenge failures collapse to Verified=false.
	Authenticate(ctx context.Context, r dto.AuthenticateRequest, ip, ua string) (*dto.AuthenticateResponse, *domain.Session, error)
}
