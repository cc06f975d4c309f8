package google

import (
	"context"
	"log/slog"
	"testing"

	"foodbridge/config"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/idtoken"
)

func newTestService(t *testing.T, validate validateFunc) *AuthServiceImpl {
	t.Helper()

	cfg := &config.Config{GoogleOAuth: &config.GoogleOAuthConfig{ClientID: "test_client_id"}}
	svc, ok := NewAuthService(cfg, slog.New(slog.DiscardHandler)).(*AuthServiceImpl)
	require.True(t, ok)
	svc.validate = validate

	return svc
}

func payloadWith(claims map[string]any) *idtoken.Payload {
	return &idtoken.Payload{
		Issuer:   "https://accounts.google.com",
		Audience: "test_client_id",
		Subject:  "google-sub-123",
		Claims:   claims,
	}
}

func TestAuthService_VerifyIDToken(t *testing.T) {
	var gotAudience string
	svc := newTestService(t, func(_ context.Context, _ string, audience string) (*idtoken.Payload, error) {
		gotAudience = audience

		return payloadWith(map[string]any{
			"email":          "cook@example.org",
			"name":           "Cook",
			"picture":        "https://example.org/a.png",
			"email_verified": true,
		}), nil
	})

	identity, err := svc.VerifyIDToken(context.Background(), "token")
	require.NoError(t, err)
	assert.Equal(t, "test_client_id", gotAudience)
	assert.Equal(t, "google-sub-123", identity.Subject)
	assert.Equal(t, "cook@example.org", identity.Email)
	assert.Equal(t, "Cook", identity.Name)
	assert.Equal(t, "https://example.org/a.png", identity.Picture)
	assert.True(t, identity.EmailVerified)
}

func TestAuthService_VerifyIDTokenFailures(t *testing.T) {
	tests := []struct {
		name    string
		payload *idtoken.Payload
		err     error
		want    string
	}{
		{name: "signature rejected", err: errors.New("idtoken: invalid token"), want: "invalid ID token"},
		{name: "unverified email", payload: payloadWith(map[string]any{"email": "a@b.c", "email_verified": "false"}), want: "email not verified"},
		{name: "missing email", payload: payloadWith(map[string]any{"email_verified": true}), want: "missing email"},
		{
			name: "foreign issuer",
			payload: &idtoken.Payload{
				Issuer:  "https://evil.example",
				Subject: "x",
				Claims:  map[string]any{"email": "a@b.c", "email_verified": true},
			},
			want: "invalid issuer",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(t, func(context.Context, string, string) (*idtoken.Payload, error) {
				return tt.payload, tt.err
			})

			identity, err := svc.VerifyIDToken(context.Background(), "token")
			require.Error(t, err)
			assert.Nil(t, identity)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestAuthService_RequiresClientID(t *testing.T) {
	svc := NewAuthService(&config.Config{}, slog.New(slog.DiscardHandler))

	_, err := svc.VerifyIDToken(context.Background(), "token")
	assert.Error(t, err)
}
