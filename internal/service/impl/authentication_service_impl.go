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

type AuthenticationServiceImpl struct {
	groups       groupStore
	challenges   challengeStore
	sessions     sessionStore
	rp           *webauthn.WebAuthn
	challengeTTL time.Duration
	sessionTTL   time.Duration
	log          *slog.Logger
}

var _ service.AuthenticationService = (*AuthenticationServiceImpl)(nil)

func NewAuthenticationService(groups groupStore, challenges challengeStore, sessions sessionStore, rp *webauthn.WebAuthn, challengeTTL, sessionTTL time.Duration, log *slog.Logger) *AuthenticationServiceImpl {
	return &AuthenticationServiceImpl{
		groups:       groups,
		challenges:   challenges,
		sessions:     sessions,
		rp:           rp,
		challengeTTL: challengeTTL,
		sessionTTL:   sessionTTL,
		log:          log,
	}
}

func (s *AuthenticationServiceImpl) Options(ctx context.Context, groupID domain.GroupID) (*dto.AuthenticationOptionsResponse, error) {
	group, err := s.groups.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return s.optionsFor(ctx, group)
}

func (s *AuthenticationServiceImpl) OptionsByInvitationCode(ctx context.Context, invitationCode string) (*dto.AuthenticationOptionsResponse, error) {
	code := strings.TrimSpace(invitationCode)
	if code == "" {
		return nil, ErrEmptyInvitationCode
	}
	group, err := s.groups.GetByInvitationCode(ctx, code)
	if err != nil {
		return nil, err
	}
	return s.optionsFor(ctx, group)
}

func (s *AuthenticationServiceImpl) optionsFor(ctx context.Context, group *domain.Group) (*dto.AuthenticationOptionsResponse, error) {
	if len(group.Authenticators) == 0 {
		return nil, domain.ErrNoAuthenticators
	}

	user := webauthnGroup{group: group}
	options, session, err := s.rp.BeginLogin(user)
	if err != nil {
		return nil, err
	}

	challenge := &domain.Challenge{
		GroupID: group.ID,
		Type:    domain.ChallengeAuthentication,
		Value:   session.Challenge,
	}
	cutoff := time.Now().UTC().Add(-s.challengeTTL)
	if err := s.challenges.Create(ctx, challenge, cutoff); err != nil {
		return nil, err
	}

	metrics.ChallengesIssuedTotal.WithLabelValues(string(domain.ChallengeAuthentication)).Inc()
	s.log.DebugContext(ctx, "authentication challenge issued", "group_id", group.ID)

	return &dto.AuthenticationOptionsResponse{
		GroupID: group.ID.String(),
		Options: options,
	}, nil
}

func (s *AuthenticationServiceImpl) Authenticate(ctx context.Context, r dto.AuthenticateRequest, ip, ua string) (*dto.AuthenticateResponse, *domain.Session, error) {
	result := "failure"
	defer func() {
		metrics.AuthenticationsTotal.WithLabelValues(result).Inc()
	}()

	groupID, err := domain.ParseGroupID(r.GroupID)
	if err != nil {
		return nil, nil, ErrMalformedGroupID
	}
	parsed, err := protocol.ParseCredentialRequestResponseBody(bytes.NewReader(r.Credential))
	if err != nil {
		return nil, nil, ErrMalformedCredential
	}

	group, err := s.groups.GetByID(ctx, groupID)
	if err != nil {
		return nil, nil, err
	}

	// An assertion naming a credential the group never registered is
	// indistinguishable from a bad signature to the caller.
	if group.AuthenticatorByCredentialID(parsed.RawID) == nil {
		s.log.InfoContext(ctx, "authentication rejected", "group_id", group.ID, "reason", "unknown credential")
		return &dto.AuthenticateResponse{Verified: false}, nil, nil
	}

	challenge, err := consumeMatching(ctx, s.challenges, group.ID,
		domain.ChallengeAuthentication, parsed.Response.CollectedClientData.Challenge, s.challengeTTL)
	if err != nil {
		if errors.Is(err, domain.ErrChallengeNotFound) || errors.Is(err, domain.ErrChallengeConsumed) {
			s.log.InfoContext(ctx, "authentication rejected", "group_id", group.ID, "reason", "challenge")
			return &dto.AuthenticateResponse{Verified: false}, nil, nil
		}
		return nil, nil, err
	}

	user := webauthnGroup{group: group}
	session := webauthn.SessionData{
		Challenge:            challenge.Value,
		UserID:               user.WebAuthnID(),
		AllowedCredentialIDs: allowedCredentialIDs(group),
		Expires:              challenge.CreatedAt.Add(s.challengeTTL),
		UserVerification:     protocol.VerificationPreferred,
	}
	credential, err := s.rp.ValidateLogin(user, session, parsed)
	if err != nil {
		s.log.InfoContext(ctx, "authentication rejected", "group_id", group.ID, "reason", "assertion")
		return &dto.AuthenticateResponse{Verified: false}, nil, nil
	}
	if credential.Authenticator.CloneWarning {
		s.log.WarnContext(ctx, "authentication rejected", "group_id", group.ID, "reason", "sign counter regression")
		return &dto.AuthenticateResponse{Verified: false}, nil, nil
	}

	sess, err := s.sessions.Create(ctx, group.ID, s.sessionTTL, ip, ua)
	if err != nil {
		return nil, nil, err
	}
	if err := s.groups.UpdateSignCount(ctx, group.ID, credential.ID, credential.Authenticator.SignCount); err != nil {
		return nil, nil, err
	}

	result = "success"
	metrics.SessionsTotal.WithLabelValues("created").Inc()
	s.log.InfoContext(ctx, "group authenticated", "group_id", group.ID, "session_id", sess.ID)

	return &dto.AuthenticateResponse{
		Verified:  true,
		SessionID: sess.ID,
	}, sess, nil
}

func allowedCredentialIDs(group *domain.Group) [][]byte {
	out := make([][]byte, len(group.Authenticators))
	for i := range group.Authenticators {
		out[i] = group.Authenticators[i].CredentialID
	}
	return out
}
