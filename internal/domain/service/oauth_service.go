package service

import (
	"context"
)

// GoogleIdentity is the verified identity carried by a Google ID token.
type GoogleIdentity struct {
	Subject       string // Google's stable user ID ('sub' claim).
	Email         string
	Name          string
	Picture       string
	EmailVerified bool
}

// OAuthAuthService verifies federated sign-in credentials.
type OAuthAuthService interface {
	// VerifyIDToken verifies a Google ID token issued for this service's client ID.
	VerifyIDToken(ctx context.Context, idToken string) (*GoogleIdentity, error)
}
