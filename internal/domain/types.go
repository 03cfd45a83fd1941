package domain

import "github.com/google/uuid"

type GroupID = uuid.UUID
type AuthenticatorID = uuid.UUID
type ChallengeID = uuid.UUID

// ParseGroupID parses the canonical string form of a group ID.
func ParseGroupID(s string) (GroupID, error) {
	return uuid.Parse(s)
}
