package sessions

import (
	"encoding/json"
	"time"
)

// User is the projection of verified identity claims that survives into a session.
type User struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// Session is a server-issued credential for a verified, domain-restricted user.
// Created and Expires are unix milliseconds; Expires is absolute and never extended.
type Session struct {
	ID      string `json:"id"`
	User    User   `json:"user"`
	Created int64  `json:"created"`
	Expires int64  `json:"expires"`
}

// New creates a session starting at now and expiring after ttl.
func New(id string, user User, now time.Time, ttl time.Duration) *Session {
	return &Session{
		ID:      id,
		User:    user,
		Created: now.UnixMilli(),
		Expires: now.Add(ttl).UnixMilli(),
	}
}

func (s *Session) CreatedAt() time.Time {
	return time.UnixMilli(s.Created)
}

func (s *Session) ExpiresAt() time.Time {
	return time.UnixMilli(s.Expires)
}

// Expired reports whether the session is no longer valid at now.
// A session is valid only while now is strictly before its expiry.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt())
}

// Marshal encodes the session into its stored JSON form.
func (s *Session) Marshal() ([]byte, error) {
	return json.Marshal(s)
}

// Unmarshal decodes a stored session record.
func Unmarshal(data []byte) (*Session, error) {
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
