package impl

import (
	"context"
	"errors"
	"log/slog"

	"groupauth/internal/domain"
	"groupauth/internal/observability/metrics"
	"groupauth/internal/service"
)

type SessionServiceImpl struct {
	groups   groupStore
	sessions sessionStore
	log      *slog.Logger
}

var _ service.SessionService = (*SessionServiceImpl)(nil)

func NewSessionService(groups groupStore, sessions sessionStore, log *slog.Logger) *SessionServiceImpl {
	return &SessionServiceImpl{groups: groups, sessions: sessions, log: log}
}

func (s *SessionServiceImpl) Resolve(ctx context.Context, sessionID string) (*domain.Group, *domain.Session, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	group, err := s.groups.GetByID(ctx, sess.GroupID)
	if err != nil {
		// A session pointing at a deleted group behaves like no session.
		if errors.Is(err, domain.ErrGroupNotFound) {
			return nil, nil, domain.ErrSessionNotFound
		}
		return nil, nil, err
	}
	return group, sess, nil
}

func (s *SessionServiceImpl) End(ctx context.Context, sessionID string) error {
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return err
	}
	metrics.SessionsTotal.WithLabelValues("ended").Inc()
	s.log.DebugContext(ctx, "session ended")
	return nil
}
