package impl

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"groupauth/internal/domain"
	"groupauth/internal/dto"
)

func newTestRegistrationService(t *testing.T, store *memoryStore) *RegistrationServiceImpl {
	t.Helper()
	rp, err := NewRelyingParty(RelyingPartyConfig{
		Name:         testRPName,
		ID:           testRPID,
		Origin:       testRPOrigin,
		ChallengeTTL: 5 * time.Minute,
	})
	if err != nil {
		t.Fatalf("relying party: %v", err)
	}
	return NewRegistrationService(store, store, rp, 5*time.Minute, testLogger())
}

func TestRegistrationOptionsValidations(t *testing.T) {
	svc := newTestRegistrationService(t, newMemoryStore())
	ctx := context.Background()

	cases := []struct {
		name string
		code string
		want error
	}{
		{name: "empty code", code: "", want: ErrEmptyInvitationCode},
		{name: "whitespace code", code: "   ", want: ErrEmptyInvitationCode},
		{name: "unknown code", code: "nobody-home", want: domain.ErrGroupNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Options(ctx, tc.code); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestRegistrationOptionsPersistChallenge(t *testing.T) {
	store := newMemoryStore()
	group := store.addGroup("The Smiths", "apple-pie")
	svc := newTestRegistrationService(t, store)

	resp, err := svc.Options(context.Background(), "apple-pie")
	if err != nil {
		t.Fatalf("options returned error: %v", err)
	}
	if resp.GroupID != group.ID.String() {
		t.Fatalf("group id mismatch: got %q want %q", resp.GroupID, group.ID)
	}

	active, err := store.FindActive(context.Background(), group.ID, domain.ChallengeRegistration, time.Now().UTC().Add(-time.Minute))
	if err != nil {
		t.Fatalf("find active: %v", err)
	}
	if len(active) != 1 {
		t.Fatalf("expected one stored challenge, got %d", len(active))
	}
	if got := resp.Options.Response.Challenge.String(); got != active[0].Value {
		t.Fatalf("stored challenge %q does not match issued challenge %q", active[0].Value, got)
	}
}

func TestRegisterValidations(t *testing.T) {
	store := newMemoryStore()
	store.addGroup("The Smiths", "apple-pie")
	svc := newTestRegistrationService(t, store)
	ctx := context.Background()

	cases := []struct {
		name string
		req  dto.RegisterRequest
		want error
	}{
		{name: "empty code", req: dto.RegisterRequest{Credential: json.RawMessage(`{}`)}, want: ErrEmptyInvitationCode},
		{name: "garbage credential", req: dto.RegisterRequest{InvitationCode: "apple-pie", Credential: json.RawMessage(`not json`)}, want: ErrMalformedCredential},
		{name: "empty credential", req: dto.RegisterRequest{InvitationCode: "apple-pie", Credential: json.RawMessage(`{}`)}, want: ErrMalformedCredential},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Register(ctx, tc.req); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestAuthenticateValidations(t *testing.T) {
	store := newMemoryStore()
	group := store.addGroup("The Smiths", "apple-pie")
	rp, err := NewRelyingParty(RelyingPartyConfig{
		Name:         testRPName,
		ID:           testRPID,
		Origin:       testRPOrigin,
		ChallengeTTL: 5 * time.Minute,
	})
	if err != nil {
		t.Fatalf("relying party: %v", err)
	}
	svc := NewAuthenticationService(store, store, &memorySessions{store: store}, rp, 5*time.Minute, time.Hour, testLogger())
	ctx := context.Background()

	cases := []struct {
		name string
		req  dto.AuthenticateRequest
		want error
	}{
		{name: "missing group id", req: dto.AuthenticateRequest{Credential: json.RawMessage(`{}`)}, want: ErrMalformedGroupID},
		{name: "bad group id", req: dto.AuthenticateRequest{GroupID: "not-a-uuid", Credential: json.RawMessage(`{}`)}, want: ErrMalformedGroupID},
		{name: "garbage credential", req: dto.AuthenticateRequest{GroupID: group.ID.String(), Credential: json.RawMessage(`not json`)}, want: ErrMalformedCredential},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, _, err := svc.Authenticate(ctx, tc.req, "", ""); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}
