package domain

import "time"

// Group is the authenticatable account unit. Multiple people share one group;
// each of them binds their own authenticator to it.
type Group struct {
	ID             GroupID         `gorm:"type:uuid;primaryKey" db:"id" json:"id"`
	Name           string          `gorm:"type:text;not null" db:"name" json:"name"`
	InvitationCode string          `gorm:"type:text;uniqueIndex:ux_groups_invitation_code" db:"invitation_code" json:"-"`
	Authenticators []Authenticator `gorm:"foreignKey:GroupID" json:"-"`
	CreatedAt      time.Time       `gorm:"not null" db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time       `gorm:"not null" db:"updated_at" json:"updatedAt"`
}

func (Group) TableName() string { return "groups" }

// AuthenticatorByCredentialID matches on raw credential ID bytes, not on any
// encoded form.
func (g *Group) AuthenticatorByCredentialID(credentialID []byte) *Authenticator {
	for i := range g.Authenticators {
		if string(g.Authenticators[i].CredentialID) == string(credentialID) {
			return &g.Authenticators[i]
		}
	}
	return nil
}

type DeviceType string

const (
	DeviceTypeSingleDevice DeviceType = "single_device"
	DeviceTypeMultiDevice  DeviceType = "multi_device"
)

// Authenticator is one public-key credential bound to a group. SignCount is
// the authenticator-reported signature counter used for clone detection.
type Authenticator struct {
	ID              AuthenticatorID `gorm:"type:uuid;primaryKey" db:"id"`
	GroupID         GroupID         `gorm:"type:uuid;index;uniqueIndex:ux_authenticators_group_cred" db:"group_id"`
	CredentialID    []byte          `gorm:"type:bytea;not null;uniqueIndex:ux_authenticators_group_cred" db:"credential_id"`
	PublicKey       []byte          `gorm:"type:bytea;not null" db:"public_key"`
	SignCount       uint32          `gorm:"not null;default:0" db:"sign_count"`
	DeviceType      DeviceType      `gorm:"type:text;not null" db:"device_type"`
	BackedUp        bool            `gorm:"not null;default:false" db:"backed_up"`
	Transports      []string        `gorm:"type:jsonb;serializer:json" db:"transports"`
	AttestationType string          `gorm:"type:text" db:"attestation_type"`
	CreatedAt       time.Time       `gorm:"not null" db:"created_at"`
	UpdatedAt       time.Time       `gorm:"not null" db:"updated_at"`
	LastUsedAt      *time.Time      `db:"last_used_at"`
}

func (Authenticator) TableName() string { return "authenticators" }
