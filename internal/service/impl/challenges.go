package impl

import (
	"context"
	"crypto/subtle"
	"time"

	"groupauth/internal/domain"
)

// consumeMatching finds the active challenge whose value equals the
// challenge embedded in the client response and consumes it. The store's
// single-row delete decides races: when two verifications present the same
// challenge, exactly one gets it. Returns domain.ErrChallengeNotFound or
// domain.ErrChallengeConsumed on the losing paths; callers collapse both to
// an unverified result without distinguishing them to the client.
func consumeMatching(ctx context.Context, challenges challengeStore, groupID domain.GroupID, typ domain.ChallengeType, value string, ttl time.Duration) (*domain.Challenge, error) {
	cutoff := time.Now().UTC().Add(-ttl)
	active, err := challenges.FindActive(ctx, groupID, typ, cutoff)
	if err != nil {
		return nil, err
	}
	for i := range active {
		if subtle.ConstantTimeCompare([]byte(active[i].Value), []byte(value)) != 1 {
			continue
		}
		if err := challenges.Consume(ctx, active[i].ID); err != nil {
			return nil, err
		}
		return &active[i], nil
	}
	return nil, domain.ErrChallengeNotFound
}
