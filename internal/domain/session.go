package domain

import "time"

// Session is the proof of a completed authentication ceremony. ID is the
// opaque bearer token; its unpredictability is the security boundary, so it
// is always generated from a CSPRNG and never derived from group data.
type Session struct {
	ID        string    `gorm:"type:text;primaryKey" db:"id" json:"-"`
	GroupID   GroupID   `gorm:"type:uuid;index" db:"group_id" json:"groupId"`
	ExpiresAt time.Time `gorm:"not null" db:"expires_at" json:"expiresAt"`
	CreatedAt time.Time `gorm:"not null" db:"created_at" json:"createdAt"`
	IP        string    `gorm:"type:inet" db:"ip" json:"-"`
	UserAgent string    `gorm:"type:text" db:"user_agent" json:"-"`
}

func (Session) TableName() string { return "sessions" }

func (s *Session) Expired(now time.Time) bool { return now.After(s.ExpiresAt) }
