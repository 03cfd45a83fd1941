package impl

import (
	"time"

	"groupauth/internal/domain"

	"github.com/go-webauthn/webauthn/protocol"
	"github.com/go-webauthn/webauthn/webauthn"
)

// RelyingPartyConfig identifies this service to authenticators.
type RelyingPartyConfig struct {
	Name         string
	ID           string
	Origin       string
	ChallengeTTL time.Duration
}

// NewRelyingParty builds the go-webauthn instance both ceremony services
// share. Ceremony timeouts follow the challenge TTL so the client-side
// timeout and the store-side expiry agree.
func NewRelyingParty(cfg RelyingPartyConfig) (*webauthn.WebAuthn, error) {
	timeout := webauthn.TimeoutConfig{
		Enforce:    true,
		Timeout:    cfg.ChallengeTTL,
		TimeoutUVD: cfg.ChallengeTTL,
	}
	return webauthn.New(&webauthn.Config{
		RPID:          cfg.ID,
		RPDisplayName: cfg.Name,
		RPOrigins:     []string{cfg.Origin},
		AuthenticatorSelection: protocol.AuthenticatorSelection{
			ResidentKey:      protocol.ResidentKeyRequirementPreferred,
			UserVerification: protocol.VerificationPreferred,
		},
		Timeouts: webauthn.TimeoutsConfig{
			Login:        timeout,
			Registration: timeout,
		},
	})
}

// webauthnGroup adapts a domain.Group to the webauthn.User interface. The
// WebAuthn user handle is the raw group UUID.
type webauthnGroup struct {
	group *domain.Group
}

func (w webauthnGroup) WebAuthnID() []byte {
	id := w.group.ID
	return id[:]
}

func (w webauthnGroup) WebAuthnName() string { return w.group.Name }

func (w webauthnGroup) WebAuthnDisplayName() string { return w.group.Name }

func (w webauthnGroup) WebAuthnCredentials() []webauthn.Credential {
	creds := make([]webauthn.Credential, len(w.group.Authenticators))
	for i := range w.group.Authenticators {
		creds[i] = credentialFromAuthenticator(&w.group.Authenticators[i])
	}
	return creds
}

func (w webauthnGroup) credentialDescriptors() []protocol.CredentialDescriptor {
	out := make([]protocol.CredentialDescriptor, len(w.group.Authenticators))
	for i := range w.group.Authenticators {
		a := &w.group.Authenticators[i]
		out[i] = protocol.CredentialDescriptor{
			Type:         protocol.PublicKeyCredentialType,
			CredentialID: a.CredentialID,
			Transport:    transportsFromStrings(a.Transports),
		}
	}
	return out
}

func credentialFromAuthenticator(a *domain.Authenticator) webauthn.Credential {
	return webauthn.Credential{
		ID:              a.CredentialID,
		PublicKey:       a.PublicKey,
		AttestationType: a.AttestationType,
		Transport:       transportsFromStrings(a.Transports),
		Flags: webauthn.CredentialFlags{
			BackupEligible: a.DeviceType == domain.DeviceTypeMultiDevice,
			BackupState:    a.BackedUp,
		},
		Authenticator: webauthn.Authenticator{
			SignCount: a.SignCount,
		},
	}
}

func authenticatorFromCredential(c *webauthn.Credential) *domain.Authenticator {
	deviceType := domain.DeviceTypeSingleDevice
	if c.Flags.BackupEligible {
		deviceType = domain.DeviceTypeMultiDevice
	}
	transports := make([]string, len(c.Transport))
	for i, t := range c.Transport {
		transports[i] = string(t)
	}
	return &domain.Authenticator{
		CredentialID:    c.ID,
		PublicKey:       c.PublicKey,
		SignCount:       c.Authenticator.SignCount,
		DeviceType:      deviceType,
		BackedUp:        c.Flags.BackupState,
		Transports:      transports,
		AttestationType: c.AttestationType,
	}
}

func transportsFromStrings(in []string) []protocol.AuthenticatorTransport {
	out := make([]protocol.AuthenticatorTransport, len(in))
	for i, t := range in {
		out[i] = protocol.AuthenticatorTransport(t)
	}
	return out
}
