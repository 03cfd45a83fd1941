package impl

import "errors"

var (
	ErrEmptyInvitationCode = errors.New("empty invitation code")
	ErrMalformedGroupID    = errors.New("malformed group id")
	ErrMalformedCredential = errors.New("malformed credential payload")
)
