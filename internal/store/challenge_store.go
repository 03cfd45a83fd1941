package store

import (
	"context"
	"log/slog"
	"time"

	"groupauth/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ChallengeStore struct{ db *gorm.DB }

func (s *Store) Challenges() *ChallengeStore { return &ChallengeStore{s.DB} }

// Create persists a fresh challenge and opportunistically clears the group's
// expired rows of the same type. Expiry is otherwise lazy: FindActive filters
// by the cutoff, so a background sweep is not needed for correctness.
func (cs *ChallengeStore) Create(ctx context.Context, c *domain.Challenge, cutoff time.Time) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	db := cs.db.WithContext(ctx)
	sweep := db.Where("group_id = ? AND type = ? AND created_at < ?", c.GroupID, c.Type, cutoff).
		Delete(&domain.Challenge{})
	if sweep.Error != nil {
		slog.WarnContext(ctx, "expired challenge sweep failed",
			"group_id", c.GroupID, "type", c.Type, "error", sweep.Error)
	}
	return db.Create(c).Error
}

// FindActive returns the group's unconsumed challenges of the given type
// created at or after cutoff. More than one may be active when a client
// requested options repeatedly without completing a ceremony.
func (cs *ChallengeStore) FindActive(ctx context.Context, groupID domain.GroupID, typ domain.ChallengeType, cutoff time.Time) ([]domain.Challenge, error) {
	var out []domain.Challenge
	err := cs.db.WithContext(ctx).
		Where("group_id = ? AND type = ? AND created_at >= ?", groupID, typ, cutoff).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

// Consume deletes the challenge row. The single-row DELETE makes consumption
// atomic: when two verifications race on the same challenge, exactly one
// observes RowsAffected == 1.
func (cs *ChallengeStore) Consume(ctx context.Context, id domain.ChallengeID) error {
	tx := cs.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Challenge{})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrChallengeConsumed
	}
	return nil
}
