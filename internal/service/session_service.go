package service

import (
	"context"

	"groupauth/internal/domain"
)

type SessionService interface {
	// Resolve maps a session ID to its group. Expired or unknown sessions
	// return domain.ErrSessionNotFound.
	Resolve(ctx context.Context, sessionID string) (*domain.Group, *domain.Session, error)

	// End deletes the session. Ending an unknown or already-ended session
	// is not an error.
	End(ctx context.Context, sessionID string) error
}
