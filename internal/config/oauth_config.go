package config

import "time"

type OAuthConfig interface {
	GetClientID() string
	GetClientSecret() string
	GetRedirectURI() string
	GetAllowedDomain() string
	GetFrontendURL() string
	GetIssuer() string
	GetSessionTTL() time.Duration
	GetStateTTL() time.Duration
}

type OAuth struct {
	ClientID      string        `env:"GOOGLE_CLIENT_ID"`
	ClientSecret  string        `env:"GOOGLE_CLIENT_SECRET"`
	RedirectURI   string        `env:"REDIRECT_URI"`
	AllowedDomain string        `env:"AUTH_DOMAIN"`
	FrontendURL   string        `env:"FRONTEND_URL"`
	Issuer        string        `env:"OIDC_ISSUER" envDefault:"https://accounts.google.com"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"168h"`
	StateTTL      time.Duration `env:"STATE_TTL" envDefault:"10m"`
}

var _ OAuthConfig = OAuth{}

func (o OAuth) GetClientID() string {
	return o.ClientID
}

func (o OAuth) GetClientSecret() string {
	return o.ClientSecret
}

func (o OAuth) GetRedirectURI() string {
	return o.RedirectURI
}

func (o OAuth) GetAllowedDomain() string {
	return o.AllowedDomain
}

func (o OAuth) GetFrontendURL() string {
	return o.FrontendURL
}

func (o OAuth) GetIssuer() string {
	return o.Issuer
}

func (o OAuth) GetSessionTTL() time.Duration {
	if o.SessionTTL <= 0 {
		return 7 * 24 * time.Hour // 7 days
	}
	return o.SessionTTL
}

func (o OAuth) GetStateTTL() time.Duration {
	if o.StateTTL <= 0 {
		return 10 * time.Minute
	}
	return o.StateTTL
}
