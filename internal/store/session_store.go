package store

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"groupauth/internal/domain"

	"gorm.io/gorm"
)

const sessionIDBytes = 32 // 256 bits

type SessionStore struct{ db *gorm.DB }

func (s *Store) Sessions() *SessionStore { return &SessionStore{s.DB} }

func newSessionID() (string, error) {
	buf := make([]byte, sessionIDBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session id: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func (ss *SessionStore) Create(ctx context.Context, groupID domain.GroupID, ttl time.Duration, ip, ua string) (*domain.Session, error) {
	id, err := newSessionID()
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	sess := &domain.Session{
		ID:        id,
		GroupID:   groupID,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
		IP:        ip,
		UserAgent: ua,
	}
	if err := ss.db.WithContext(ctx).Create(sess).Error; err != nil {
		return nil, err
	}
	return sess, nil
}

// Get treats expired rows as absent and deletes them on the way out.
func (ss *SessionStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	var sess domain.Session
	err := ss.db.WithContext(ctx).First(&sess, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}
	if sess.Expired(time.Now().UTC()) {
		ss.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Session{})
		return nil, domain.ErrSessionNotFound
	}
	return &sess, nil
}

// Delete is idempotent: removing an unknown or already-deleted session
// succeeds.
func (ss *SessionStore) Delete(ctx context.Context, id string) error {
	return ss.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Session{}).Error
}
