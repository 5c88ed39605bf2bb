package config

import (
	"slices"
)

type Cors struct {
	Origins []string `env:"ALLOWED_ORIGINS" envSeparator:","`
}

var _ CorsConfig = Cors{}

// AllowedOrigins is an ordered allow-list. The first entry is the fallback
// origin returned for callers that are not on the list.
type AllowedOrigins []string

func (a AllowedOrigins) IsAllowedOrigin(origin string) bool {
	return origin != "" && slices.Contains(a, origin)
}

// Resolve returns the value for Access-Control-Allow-Origin. Allowed origins
// (or any origin when "*" is listed) are echoed; anything else gets the first
// configured origin, which the browser will then refuse.
func (a AllowedOrigins) Resolve(origin string) string {
	if len(a) == 0 {
		return ""
	}
	if a.IsAllowedOrigin(origin) || (origin != "" && slices.Contains(a, "*")) {
		return origin
	}
	return a[0]
}

func (c Cors) GetAllowedOrigins() AllowedOrigins {
	return AllowedOrigins(c.Origins)
}

func (Cors) GetAllowedMethods() string {
	return "GET, POST, PUT, DELETE, OPTIONS"
}

func (Cors) GetAllowedHeaders() string {
	return "Content-Type, Authorization"
}
