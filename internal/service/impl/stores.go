package impl

import (
	"context"
	"time"

	"groupauth/internal/domain"
)

// Narrow store contracts keep the services testable with in-memory fakes.
// *store.GroupStore and friends satisfy these.

type groupStore interface {
	GetByID(ctx context.Context, id domain.GroupID) (*domain.Group, error)
	GetByInvitationCode(ctx context.Context, code string) (*domain.Group, error)
	AppendAuthenticator(ctx context.Context, groupID domain.GroupID, a *domain.Authenticator) error
	UpdateSignCount(ctx context.Context, groupID domain.GroupID, credentialID []byte, count uint32) error
}

type challengeStore interface {
	Create(ctx context.Context, c *domain.Challenge, cutoff time.Time) error
	FindActive(ctx context.Context, groupID domain.GroupID, typ domain.ChallengeType, cutoff time.Time) ([]domain.Challenge, error)
	Consume(ctx context.Context, id domain.ChallengeID) error
}

type sessionStore interface {
	Create(ctx context.Context, groupID domain.GroupID, ttl time.Duration, ip, ua string) (*domain.Session, error)
	Get(ctx context.Context, id string) (*domain.Session, error)
	Delete(ctx context.Context, id string) error
}
