package domain

import "time"

// RefreshToken is one persisted session grant. It is valid while it exists,
// has not expired and its owner still exists.
type RefreshToken struct {
	ID        string
	Token     string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the grant is past its expiry at now.
func (t *RefreshToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// IssuedToken is a signed token together with its absolute expiry.
type IssuedToken struct {
	Value     string
	ExpiresAt time.Time
}

// TokenPair is what a successful register or login hands back to the client.
type TokenPair struct {
	Access  IssuedToken
	Refresh IssuedToken
}

// Identity is the caller as proven by a verified access token. It is derived
// from signed claims and is never re-checked against the store.
type Identity struct {
	ID    string
	Email string
	Role  Role
}
