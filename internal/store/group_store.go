package store

import (
	"context"
	"errors"
	"time"

	"groupauth/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GroupStore struct{ db *gorm.DB }

func (s *Store) Groups() *GroupStore { return &GroupStore{s.DB} }

func (gs *GroupStore) Create(ctx context.Context, g *domain.Group) error {
	now := time.Now().UTC()
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = now
	}
	g.UpdatedAt = now
	return gs.db.WithContext(ctx).Create(g).Error
}

func (gs *GroupStore) GetByID(ctx context.Context, id domain.GroupID) (*domain.Group, error) {
	var g domain.Group
	err := gs.db.WithContext(ctx).
		Preload("Authenticators", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		First(&g, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrGroupNotFound
		}
		return nil, err
	}
	return &g, nil
}

func (gs *GroupStore) GetByInvitationCode(ctx context.Context, code string) (*domain.Group, error) {
	var g domain.Group
	err := gs.db.WithContext(ctx).
		Preload("Authenticators", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		First(&g, "invitation_code = ?", code).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrGroupNotFound
		}
		return nil, err
	}
	return &g, nil
}

// AppendAuthenticator inserts a single authenticator row. Concurrent
// registrations for the same group each insert their own row, so neither
// write can drop the other; the (group_id, credential_id) unique index
// rejects duplicates.
func (gs *GroupStore) AppendAuthenticator(ctx context.Context, groupID domain.GroupID, a *domain.Authenticator) error {
	now := time.Now().UTC()
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	a.GroupID = groupID
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = now
	return gs.db.WithContext(ctx).Create(a).Error
}

// UpdateSignCount writes the reported counter for one authenticator record.
// The update is scoped to the single row, so concurrent authentications with
// different authenticators of the same group never clobber each other.
func (gs *GroupStore) UpdateSignCount(ctx context.Context, groupID domain.GroupID, credentialID []byte, count uint32) error {
	now := time.Now().UTC()
	tx := gs.db.WithContext(ctx).
		Model(&domain.Authenticator{}).
		Where("group_id = ? AND credential_id = ?", groupID, credentialID).
		Updates(map[string]any{
			"sign_count":   count,
			"last_used_at": now,
			"updated_at":   now,
		})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrAuthenticatorNotFound
	}
	return nil
}
