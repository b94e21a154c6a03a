package models

import "time"

// Credential represents a stored tracker access credential obtained through
// the OAuth authorization flow.
type Credential struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Usable reports whether the credential has a token that has not expired
// as of the given instant.
func (c *Credential) Usable(now time.Time) bool {
	if c == nil || c.AccessToken == "" {
		return false
	}
	return now.Before(c.ExpiresAt)
}
