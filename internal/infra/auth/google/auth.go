// Package google verifies Google sign-in credentials.
package google

import (
	"context"
	"log/slog"

	"foodbridge/config"
	"foodbridge/internal/domain/service"

	"github.com/pkg/errors"
	"google.golang.org/api/idtoken"
)

var validIssuers = map[string]bool{
	"https://accounts.google.com": true,
	"accounts.google.com":         true,
}

type validateFunc func(ctx context.Context, idToken, audience string) (*idtoken.Payload, error)

// AuthServiceImpl implements service.OAuthAuthService against Google's signing keys.
type AuthServiceImpl struct {
	clientID string
	logger   *slog.Logger
	validate validateFunc
}

// NewAuthService creates a new Google AuthService
func NewAuthService(cfg *config.Config, logger *slog.Logger) service.OAuthAuthService {
	var clientID string
	if cfg.GoogleOAuth != nil {
		clientID = cfg.GoogleOAuth.ClientID
	}

	return &AuthServiceImpl{
		clientID: clientID,
		logger:   logger,
		validate: idtoken.Validate,
	}
}

// VerifyIDToken checks signature, audience and expiry of a Google ID token and returns its identity.
func (s *AuthServiceImpl) VerifyIDToken(ctx context.Context, idToken string) (*service.GoogleIdentity, error) {
	if s.clientID == "" {
		return nil, errors.New("google client ID is not configured")
	}

	payload, err := s.validate(ctx, idToken, s.clientID)
	if err != nil {
		s.logger.WarnContext(ctx, "Google ID token rejected", slog.Any("error", err))

		return nil, errors.Wrap(err, "invalid ID token")
	}

	identity, err := identityFromPayload(payload)
	if err != nil {
		s.logger.WarnContext(ctx, "Google ID token claims rejected", slog.Any("error", err))

		return nil, errors.Wrap(err, "token verification failed")
	}

	s.logger.DebugContext(ctx, "Google ID token verified",
		slog.String("subject", identity.Subject),
		slog.String("email", identity.Email))

	return identity, nil
}

// identityFromPayload maps validated claims onto an identity. The email must be present and verified.
func identityFromPayload(payload *idtoken.Payload) (*service.GoogleIdentity, error) {
	if !validIssuers[payload.Issuer] {
		return nil, errors.Errorf("invalid issuer: %s", payload.Issuer)
	}
	if payload.Subject == "" {
		return nil, errors.New("missing subject")
	}

	identity := &service.GoogleIdentity{
		Subject:       payload.Subject,
		Email:         stringClaim(payload.Claims, "email"),
		Name:          stringClaim(payload.Claims, "name"),
		Picture:       stringClaim(payload.Claims, "picture"),
		EmailVerified: boolClaim(payload.Claims, "email_verified"),
	}

	if identity.Email == "" {
		return nil, errors.New("missing email")
	}
	if !identity.EmailVerified {
		return nil, errors.New("email not verified")
	}

	return identity, nil
}

func stringClaim(claims map[string]any, key string) string {
	v, _ := claims[key].(string)

	return v
}

// boolClaim accepts both JSON booleans and the "true" string some issuers emit.
func boolClaim(claims map[string]any, key string) bool {
	switch v := claims[key].(type) {
	case bool:
		return v
	case string:
		return v == "true"
	default:
		return false
	}
}
