package auth

import (
	"context"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/jrsteele09/go-bucket-browser/internal/config"
	apperrors "github.com/jrsteele09/go-bucket-browser/internal/errors"
	"golang.org/x/oauth2"
)

// IdentityProvider is the external OAuth2/OIDC authority.
type IdentityProvider interface {
	// AuthCodeURL returns the authorization endpoint URL carrying state.
	AuthCodeURL(state string) string

	// Exchange trades an authorization code for verified identity claims.
	Exchange(ctx context.Context, code string) (*Claims, error)
}

var _ IdentityProvider = (*OIDCProvider)(nil)

// OIDCProvider talks to an OpenID Connect provider such as Google. ID tokens
// are checked for signature, issuer, audience and expiry by go-oidc.
type OIDCProvider struct {
	oauth2Config *oauth2.Config
	verifier     *oidc.IDTokenVerifier
	domain       string
}

// NewOIDCProvider discovers the provider configuration from cfg's issuer.
func NewOIDCProvider(ctx context.Context, cfg config.OAuthConfig) (*OIDCProvider, error) {
	provider, err := oidc.NewProvider(ctx, cfg.GetIssuer())
	if err != nil {
		return nil, fmt.Errorf("[NewOIDCProvider] failed to create OIDC provider: %w", err)
	}
	verifier := provider.Verifier(&oidc.Config{ClientID: cfg.GetClientID()})
	return newOIDCProvider(cfg, provider.Endpoint(), verifier), nil
}

// NewOIDCProviderWithKeySet skips discovery and verifies ID tokens against keySet.
func NewOIDCProviderWithKeySet(cfg config.OAuthConfig, endpoint oauth2.Endpoint, keySet oidc.KeySet) *OIDCProvider {
	verifier := oidc.NewVerifier(cfg.GetIssuer(), keySet, &oidc.Config{ClientID: cfg.GetClientID()})
	return newOIDCProvider(cfg, endpoint, verifier)
}

func newOIDCProvider(cfg config.OAuthConfig, endpoint oauth2.Endpoint, verifier *oidc.IDTokenVerifier) *OIDCProvider {
	return &OIDCProvider{
		oauth2Config: &oauth2.Config{
			ClientID:     cfg.GetClientID(),
			ClientSecret: cfg.GetClientSecret(),
			Endpoint:     endpoint,
			RedirectURL:  cfg.GetRedirectURI(),
			Scopes:       []string{oidc.ScopeOpenID, "email", "profile"},
		},
		verifier: verifier,
		domain:   cfg.GetAllowedDomain(),
	}
}

func (p *OIDCProvider) AuthCodeURL(state string) string {
	var opts []oauth2.AuthCodeOption
	if p.domain != "" {
		opts = append(opts, oauth2.SetAuthURLParam("hd", p.domain))
	}
	return p.oauth2Config.AuthCodeURL(state, opts...)
}

func (p *OIDCProvider) Exchange(ctx context.Context, code string) (*Claims, error) {
	token, err := p.oauth2Config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("[OIDCProvider Exchange] %w: %w", apperrors.ErrTokenExchangeFailed, err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, fmt.Errorf("[OIDCProvider Exchange] no id_token in response: %w", apperrors.ErrTokenExchangeFailed)
	}

	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("[OIDCProvider Exchange] %w: %w", apperrors.ErrAuthenticationFailed, err)
	}

	var claims struct {
		Email         string   `json:"email"`
		EmailVerified flexBool `json:"email_verified"`
		Name          string   `json:"name"`
		Picture       string   `json:"picture"`
		HostedDomain  string   `json:"hd"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("[OIDCProvider Exchange] failed to extract claims: %w: %w", apperrors.ErrAuthenticationFailed, err)
	}

	return &Claims{
		Subject:       idToken.Subject,
		Email:         claims.Email,
		EmailVerified: bool(claims.EmailVerified),
		Name:          claims.Name,
		Picture:       claims.Picture,
		HostedDomain:  claims.HostedDomain,
		Audience:      idToken.Audience,
		Expiry:        idToken.Expiry,
	}, nil
}
