package impl

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"groupauth/internal/domain"
	"groupauth/internal/dto"
	"groupauth/internal/observability/metrics"
	"groupauth/internal/service"

	"github.com/go-webauthn/webauthn/protocol"
	"github.com/go-webauthn/webauthn/webauthn"
)

type RegistrationServiceImpl struct {
	groups       groupStore
	challenges   challengeStore
	rp           *webauthn.WebAuthn
	challengeTTL time.Duration
	log          *slog.Logger
}

var _ service.RegistrationService = (*RegistrationServiceImpl)(nil)

func NewRegistrationService(groups groupStore, challenges challengeStore, rp *webauthn.WebAuthn, challengeTTL time.Duration, log *slog.Logger) *RegistrationServiceImpl {
	return &RegistrationServiceImpl{
		groups:       groups,
		challenges:   challenges,
		rp:           rp,
		challengeTTL: challengeTTL,
		log:          log,
	}
}

func (s *RegistrationServiceImpl) Options(ctx context.Context, invitationCode string) (*dto.RegistrationOptionsResponse, error) {
	code := strings.TrimSpace(invitationCode)
	if code == "" {
		return nil, ErrEmptyInvitationCode
	}

	group, err := s.groups.GetByInvitationCode(ctx, code)
	if err != nil {
		return nil, err
	}

	user := webauthnGroup{group: group}
	options, session, err := s.rp.BeginRegistration(user,
		webauthn.WithExclusions(user.credentialDescriptors()))
	if err != nil {
		return nil, err
	}

	challenge := &domain.Challenge{
		GroupID: group.ID,
		Type:    domain.ChallengeRegistration,
		Value:   session.Challenge,
	}
	cutoff := time.Now().UTC().Add(-s.challengeTTL)
	if err := s.challenges.Create(ctx, challenge, cutoff); err != nil {
		return nil, err
	}

	metrics.ChallengesIssuedTotal.WithLabelValues(string(domain.ChallengeRegistration)).Inc()
	s.log.DebugContext(ctx, "registration challenge issued", "group_id", group.ID)

	return &dto.RegistrationOptionsResponse{
		GroupID: group.ID.String(),
		Options: options,
	}, nil
}

func (s *RegistrationServiceImpl) Register(ctx context.Context, r dto.RegisterRequest) (*dto.RegisterResponse, error) {
	result := "failure"
	defer func() {
		metrics.RegistrationsTotal.WithLabelValues(result).Inc()
	}()

	code := strings.TrimSpace(r.InvitationCode)
	if code == "" {
		return nil, ErrEmptyInvitationCode
	}
	parsed, err := protocol.ParseCredentialCreationResponseBody(bytes.NewReader(r.Credential))
	if err != nil {
		return nil, ErrMalformedCredential
	}

	group, err := s.groups.GetByInvitationCode(ctx, code)
	if err != nil {
		return nil, err
	}

	challenge, err := consumeMatching(ctx, s.challenges, group.ID,
		domain.ChallengeRegistration, parsed.Response.CollectedClientData.Challenge, s.challengeTTL)
	if err != nil {
		if errors.Is(err, domain.ErrChallengeNotFound) || errors.Is(err, domain.ErrChallengeConsumed) {
			s.log.InfoContext(ctx, "registration rejected", "group_id", group.ID, "reason", "challenge")
			return &dto.RegisterResponse{Verified: false}, nil
		}
		return nil, err
	}

	user := webauthnGroup{group: group}
	session := webauthn.SessionData{
		Challenge:        challenge.Value,
		UserID:           user.WebAuthnID(),
		Expires:          challenge.CreatedAt.Add(s.challengeTTL),
		UserVerification: protocol.VerificationPreferred,
	}
	credential, err := s.rp.CreateCredential(user, session, parsed)
	if err != nil {
		s.log.InfoContext(ctx, "registration rejected", "group_id", group.ID, "reason", "attestation")
		return &dto.RegisterResponse{Verified: false}, nil
	}
	if group.AuthenticatorByCredentialID(credential.ID) != nil {
		s.log.InfoContext(ctx, "registration rejected", "group_id", group.ID, "reason", "duplicate")
		return &dto.RegisterResponse{Verified: false}, nil
	}

	if err := s.groups.AppendAuthenticator(ctx, group.ID, authenticatorFromCredential(credential)); err != nil {
		return nil, err
	}

	result = "success"
	s.log.InfoContext(ctx, "authenticator registered",
		"group_id", group.ID, "authenticators", len(group.Authenticators)+1)

	return &dto.RegisterResponse{
		Verified: true,
		GroupID:  group.ID.String(),
	}, nil
}
