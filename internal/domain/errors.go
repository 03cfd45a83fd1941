package domain

import "errors"

var (
	ErrGroupNotFound         = errors.New("group not found")                          // 404
	ErrAuthenticatorNotFound = errors.New("authenticator not found")                  // collapsed to verified=false
	ErrNoAuthenticators      = errors.New("group has no registered authenticators")   // 404
	ErrChallengeNotFound     = errors.New("no matching active challenge")             // collapsed to verified=false
	ErrChallengeConsumed     = errors.New("challenge already consumed")               // collapsed to verified=false
	ErrSessionNotFound       = errors.New("session not found")                        // 401
	ErrVerificationFailed    = errors.New("verification failed")                      // collapsed to verified=false
)
