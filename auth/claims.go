package auth

import (
	"encoding/json"
	"slices"
	"strings"
	"time"

	apperrors "github.com/jrsteele09/go-bucket-browser/internal/errors"
	"github.com/jrsteele09/go-bucket-browser/sessions"
	"github.com/pkg/errors"
)

// Claims are the identity claims taken from a verified ID token. They are
// never stored; only the User projection outlives the login.
type Claims struct {
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
	Picture       string
	HostedDomain  string
	Audience      []string
	Expiry        time.Time
}

func (c *Claims) User() sessions.User {
	return sessions.User{
		Email:   c.Email,
		Name:    c.Name,
		Picture: c.Picture,
	}
}

// checkClaims is the authoritative domain check. The hd hint sent to the
// provider only narrows the account chooser.
func checkClaims(c *Claims, clientID, allowedDomain string, now time.Time) error {
	if c == nil {
		return errors.Wrap(apperrors.ErrAuthenticationFailed, "no claims")
	}
	if !now.Before(c.Expiry) {
		return errors.Wrap(apperrors.ErrAuthenticationFailed, "id token expired")
	}
	if !slices.Contains(c.Audience, clientID) {
		return errors.Wrap(apperrors.ErrAuthenticationFailed, "id token audience mismatch")
	}
	if c.Email == "" {
		return errors.Wrap(apperrors.ErrAuthenticationFailed, "id token has no email")
	}
	if !c.EmailVerified {
		return errors.Wrapf(apperrors.ErrDomainRestricted, "email %s is not verified", c.Email)
	}

	at := strings.LastIndex(c.Email, "@")
	if at < 0 || !strings.EqualFold(c.Email[at+1:], allowedDomain) {
		return errors.Wrapf(apperrors.ErrDomainRestricted, "email %s is outside %s", c.Email, allowedDomain)
	}
	if c.HostedDomain != "" && !strings.EqualFold(c.HostedDomain, allowedDomain) {
		return errors.Wrapf(apperrors.ErrDomainRestricted, "hosted domain %s is not %s", c.HostedDomain, allowedDomain)
	}
	return nil
}

// flexBool accepts both true and "true"; some providers send email_verified as a string.
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	var v bool
	if err := json.Unmarshal(data, &v); err == nil {
		*b = flexBool(v)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*b = flexBool(strings.EqualFold(s, "true"))
	return nil
}
