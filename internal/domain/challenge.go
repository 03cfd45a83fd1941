package domain

import "time"

type ChallengeType string

const (
	ChallengeRegistration   ChallengeType = "registration"
	ChallengeAuthentication ChallengeType = "authentication"
)

// Challenge is a single-use nonce issued when ceremony options are generated.
// Value holds the base64url challenge string exactly as it appears in the
// client data of the authenticator response. A row is deleted when consumed;
// rows older than the configured TTL are treated as absent by readers.
type Challenge struct {
	ID        ChallengeID   `gorm:"type:uuid;primaryKey" db:"id"`
	GroupID   GroupID       `gorm:"type:uuid;index:ix_challenges_group_type" db:"group_id"`
	Type      ChallengeType `gorm:"type:text;index:ix_challenges_group_type" db:"type"`
	Value     string        `gorm:"type:text;not null" db:"value"`
	CreatedAt time.Time     `gorm:"not null" db:"created_at"`
}

func (Challenge) TableName() string { return "challenges" }

func (c *Challenge) Expired(ttl time.Duration, now time.Time) bool {
	return now.After(c.CreatedAt.Add(ttl))
}
