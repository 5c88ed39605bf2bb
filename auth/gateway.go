// Package auth implements the domain-restricted login flow: CSRF state
// issue and consumption, code exchange, claim checks and session lifecycle.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-bucket-browser/internal/config"
	apperrors "github.com/jrsteele09/go-bucket-browser/internal/errors"
	"github.com/jrsteele09/go-bucket-browser/sessions"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	statePending     = "pending"
	stateTokenLength = 16
	successPath      = "/auth/success"
)

// LoginObserver is told the outcome of every completed or failed login.
type LoginObserver interface {
	ObserveLogin(result string)
}

// CallbackParams are the query parameters the provider redirects back with.
type CallbackParams struct {
	Code             string
	State            string
	Error            string
	ErrorDescription string
}

// LoginResult is returned when a login completes and a session was issued.
type LoginResult struct {
	Session     *sessions.Session
	RedirectURL string
	MaxAge      time.Duration
}

// Gateway owns the login state machine:
// unauthenticated -> state-issued -> code-received -> token-exchanged ->
// domain-checked -> session-issued. Any failure ends the attempt.
type Gateway struct {
	cfg      config.OAuthConfig
	idp      IdentityProvider
	states   sessions.Store
	sessions sessions.Store
	nowTime  func() time.Time
	observer LoginObserver
}

type GatewayOption func(*Gateway)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) GatewayOption {
	return func(g *Gateway) {
		g.nowTime = nowFunc
	}
}

func WithLoginObserver(o LoginObserver) GatewayOption {
	return func(g *Gateway) {
		g.observer = o
	}
}

// NewGateway builds a gateway. states and sessionStore must be distinct stores.
func NewGateway(cfg config.OAuthConfig, idp IdentityProvider, states, sessionStore sessions.Store, options ...GatewayOption) (*Gateway, error) {
	if cfg == nil {
		return nil, errors.New("[NewGateway] config is required")
	}
	if idp == nil {
		return nil, errors.New("[NewGateway] identity provider is required")
	}
	if states == nil || sessionStore == nil {
		return nil, errors.New("[NewGateway] state and session stores are required")
	}

	g := &Gateway{
		cfg:      cfg,
		idp:      idp,
		states:   states,
		sessions: sessionStore,
		nowTime:  time.Now,
	}
	for _, opt := range options {
		opt(g)
	}
	return g, nil
}

// BeginLogin records a fresh single-use state and returns the provider URL to redirect to.
func (g *Gateway) BeginLogin(ctx context.Context) (string, error) {
	state, err := randomToken(stateTokenLength)
	if err != nil {
		return "", errors.Wrap(err, "[Gateway BeginLogin] failed to generate state")
	}
	if err := g.states.Put(ctx, state, []byte(statePending), g.cfg.GetStateTTL()); err != nil {
		return "", errors.Wrap(err, "[Gateway BeginLogin] failed to store state")
	}
	return g.idp.AuthCodeURL(state), nil
}

// CompleteLogin finishes a login from the provider callback. The state is
// consumed before the code exchange, so a failed exchange needs a new login.
func (g *Gateway) CompleteLogin(ctx context.Context, params CallbackParams) (*LoginResult, error) {
	result, err := g.completeLogin(ctx, params)
	if g.observer != nil {
		g.observer.ObserveLogin(loginOutcome(err))
	}
	if err != nil {
		log.Warn().Err(err).Msg("login failed")
		return nil, err
	}
	log.Info().Str("email", result.Session.User.Email).Msg("login succeeded")
	return result, nil
}

func (g *Gateway) completeLogin(ctx context.Context, params CallbackParams) (*LoginResult, error) {
	if params.Error != "" {
		return nil, errors.Wrapf(apperrors.ErrProviderError, "%s - %s", params.Error, params.ErrorDescription)
	}
	if params.Code == "" || params.State == "" {
		return nil, errors.Wrap(apperrors.ErrInvalidRequest, "missing code or state parameter")
	}

	value, err := g.states.Get(ctx, params.State)
	if errors.Is(err, sessions.ErrNotFound) {
		return nil, errors.WithStack(apperrors.ErrInvalidState)
	}
	if err != nil {
		return nil, errors.Wrap(err, "[Gateway CompleteLogin] state lookup")
	}
	if string(value) != statePending {
		return nil, errors.WithStack(apperrors.ErrInvalidState)
	}
	if err := g.states.Delete(ctx, params.State); err != nil {
		return nil, errors.Wrap(err, "[Gateway CompleteLogin] failed to consume state")
	}

	claims, err := g.idp.Exchange(ctx, params.Code)
	if err != nil {
		if !errors.Is(err, apperrors.ErrTokenExchangeFailed) && !errors.Is(err, apperrors.ErrAuthenticationFailed) {
			return nil, fmt.Errorf("[Gateway CompleteLogin] %w: %w", apperrors.ErrTokenExchangeFailed, err)
		}
		return nil, err
	}

	now := g.nowTime()
	if err := checkClaims(claims, g.cfg.GetClientID(), g.cfg.GetAllowedDomain(), now); err != nil {
		return nil, err
	}

	ttl := g.cfg.GetSessionTTL()
	session := sessions.New(uuid.NewString(), claims.User(), now, ttl)
	data, err := session.Marshal()
	if err != nil {
		return nil, errors.Wrap(err, "[Gateway CompleteLogin] failed to encode session")
	}
	if err := g.sessions.Put(ctx, session.ID, data, ttl); err != nil {
		return nil, errors.Wrap(err, "[Gateway CompleteLogin] failed to store session")
	}

	return &LoginResult{
		Session:     session,
		RedirectURL: strings.TrimSuffix(g.cfg.GetFrontendURL(), "/") + successPath + "?session=" + url.QueryEscape(session.ID),
		MaxAge:      ttl,
	}, nil
}

// VerifySession returns the session for sessionID while it is unexpired.
// An expired record is deleted on the way out.
func (g *Gateway) VerifySession(ctx context.Context, sessionID string) (*sessions.Session, error) {
	if sessionID == "" {
		return nil, errors.WithStack(apperrors.ErrNoSession)
	}

	data, err := g.sessions.Get(ctx, sessionID)
	if errors.Is(err, sessions.ErrNotFound) {
		return nil, errors.WithStack(apperrors.ErrSessionNotFound)
	}
	if err != nil {
		return nil, errors.Wrap(err, "[Gateway VerifySession] session lookup")
	}

	session, err := sessions.Unmarshal(data)
	if err != nil {
		return nil, errors.Wrapf(apperrors.ErrSessionNotFound, "unreadable session record: %v", err)
	}

	if session.Expired(g.nowTime()) {
		if err := g.sessions.Delete(ctx, sessionID); err != nil {
			log.Warn().Err(err).Msg("failed to delete expired session")
		}
		return nil, errors.WithStack(apperrors.ErrSessionExpired)
	}
	return session, nil
}

// Logout deletes the session if there is one. It is safe to call repeatedly.
func (g *Gateway) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := g.sessions.Delete(ctx, sessionID); err != nil {
		return errors.Wrap(err, "[Gateway Logout] failed to delete session")
	}
	return nil
}

func loginOutcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, apperrors.ErrProviderError):
		return "provider_error"
	case errors.Is(err, apperrors.ErrInvalidRequest):
		return "invalid_request"
	case errors.Is(err, apperrors.ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, apperrors.ErrTokenExchangeFailed):
		return "token_exchange_failed"
	case errors.Is(err, apperrors.ErrDomainRestricted):
		return "domain_restricted"
	case errors.Is(err, apperrors.ErrAuthenticationFailed):
		return "authentication_failed"
	default:
		return "error"
	}
}

func randomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
