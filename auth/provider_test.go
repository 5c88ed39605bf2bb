package auth_test

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-bucket-browser/auth"
	apperrors "github.com/jrsteele09/go-bucket-browser/internal/errors"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

type tokenServer struct {
	server  *httptest.Server
	idToken string
	status  int
}

func newTokenServer(t *testing.T) *tokenServer {
	t.Helper()
	ts := &tokenServer{status: http.StatusOK}
	ts.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		if ts.status != http.StatusOK || r.PostForm.Get("code") != "good-code" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "access",
			"token_type":   "Bearer",
			"expires_in":   3600,
			"id_token":     ts.idToken,
		})
	}))
	t.Cleanup(ts.server.Close)
	return ts
}

func signIDToken(t *testing.T, key *rsa.PrivateKey, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	require.NoError(t, err)
	return signed
}

func setupProvider(t *testing.T) (*auth.OIDCProvider, *tokenServer, *rsa.PrivateKey) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	ts := newTokenServer(t)
	endpoint := oauth2.Endpoint{
		AuthURL:   "https://accounts.google.com/o/oauth2/v2/auth",
		TokenURL:  ts.server.URL + "/token",
		AuthStyle: oauth2.AuthStyleInParams,
	}
	keySet := &oidc.StaticKeySet{PublicKeys: []crypto.PublicKey{&key.PublicKey}}
	return auth.NewOIDCProviderWithKeySet(testConfig(), endpoint, keySet), ts, key
}

func validClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"iss":            "https://accounts.google.com",
		"sub":            "1234567890",
		"aud":            testClientID,
		"exp":            time.Now().Add(time.Hour).Unix(),
		"iat":            time.Now().Unix(),
		"email":          testEmail,
		"email_verified": true,
		"name":           "Jane Doe",
		"picture":        "https://lh3.googleusercontent.com/a/jane",
		"hd":             testDomain,
	}
}

func TestOIDCAuthCodeURL(t *testing.T) {
	provider, _, _ := setupProvider(t)

	u, err := url.Parse(provider.AuthCodeURL("state-abc"))
	require.NoError(t, err)
	q := u.Query()
	require.Equal(t, "state-abc", q.Get("state"))
	require.Equal(t, testClientID, q.Get("client_id"))
	require.Equal(t, "https://api.example.com/api/auth/callback", q.Get("redirect_uri"))
	require.Equal(t, "code", q.Get("response_type"))
	require.Equal(t, "openid email profile", q.Get("scope"))
	require.Equal(t, testDomain, q.Get("hd"))
}

func TestOIDCExchangeVerifiesIDToken(t *testing.T) {
	provider, ts, key := setupProvider(t)
	ts.idToken = signIDToken(t, key, validClaims())

	claims, err := provider.Exchange(context.Background(), "good-code")
	require.NoError(t, err)
	require.Equal(t, "1234567890", claims.Subject)
	require.Equal(t, testEmail, claims.Email)
	require.True(t, claims.EmailVerified)
	require.Equal(t, "Jane Doe", claims.Name)
	require.Equal(t, testDomain, claims.HostedDomain)
	require.Equal(t, []string{testClientID}, claims.Audience)
	require.True(t, claims.Expiry.After(time.Now()))
}

func TestOIDCExchangeAcceptsStringEmailVerified(t *testing.T) {
	provider, ts, key := setupProvider(t)
	c := validClaims()
	c["email_verified"] = "true"
	ts.idToken = signIDToken(t, key, c)

	claims, err := provider.Exchange(context.Background(), "good-code")
	require.NoError(t, err)
	require.True(t, claims.EmailVerified)
}

func TestOIDCExchangeRejectedCode(t *testing.T) {
	provider, _, _ := setupProvider(t)

	_, err := provider.Exchange(context.Background(), "bad-code")
	require.ErrorIs(t, err, apperrors.ErrTokenExchangeFailed)
}

func TestOIDCExchangeRejectsBadTokens(t *testing.T) {
	otherKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	tests := []struct {
		name   string
		token  func(key *rsa.PrivateKey) string
		expect error
	}{
		{"wrong signer", func(*rsa.PrivateKey) string { return signIDToken(t, otherKey, validClaims()) }, apperrors.ErrAuthenticationFailed},
		{"wrong audience", func(key *rsa.PrivateKey) string {
			c := validClaims()
			c["aud"] = "another-client"
			return signIDToken(t, key, c)
		}, apperrors.ErrAuthenticationFailed},
		{"wrong issuer", func(key *rsa.PrivateKey) string {
			c := validClaims()
			c["iss"] = "https://evil.example.com"
			return signIDToken(t, key, c)
		}, apperrors.ErrAuthenticationFailed},
		{"expired", func(key *rsa.PrivateKey) string {
			c := validClaims()
			c["exp"] = time.Now().Add(-time.Hour).Unix()
			return signIDToken(t, key, c)
		}, apperrors.ErrAuthenticationFailed},
		{"missing", func(*rsa.PrivateKey) string { return "" }, apperrors.ErrTokenExchangeFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, ts, key := setupProvider(t)
			ts.idToken = tt.token(key)

			_, err := provider.Exchange(context.Background(), "good-code")
			require.ErrorIs(t, err, tt.expect)
		})
	}
}

func TestGatewayWithOIDCProvider(t *testing.T) {
	provider, ts, key := setupProvider(t)
	c := validClaims()
	c["email"] = "intruder@other.org"
	c["hd"] = "other.org"
	ts.idToken = signIDToken(t, key, c)

	f := setupTestFixture(t)
	gateway, err := auth.NewGateway(testConfig(), provider, f.states, f.sessions)
	require.NoError(t, err)

	redirect, err := gateway.BeginLogin(f.ctx)
	require.NoError(t, err)
	u, err := url.Parse(redirect)
	require.NoError(t, err)

	_, err = gateway.CompleteLogin(f.ctx, auth.CallbackParams{Code: "good-code", State: u.Query().Get("state")})
	require.ErrorIs(t, err, apperrors.ErrDomainRestricted)
	require.Equal(t, 0, f.sessions.Len())
}
