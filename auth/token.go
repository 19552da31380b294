package auth

import "time"

// Token is the credential set returned by the auth service. AccessToken is
// the only required field; services that do not rotate credentials leave
// RefreshToken empty and ExpiresIn zero, which means "treat as long-lived".
type Token struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
	// ExpiresIn is the validity window in seconds, counted from ObtainedAt.
	ExpiresIn  int       `json:"expiresIn,omitempty"`
	ObtainedAt time.Time `json:"-"`
}

// Expired reports whether the token's validity window has passed. Tokens
// without an expiry never expire client-side; the server rejects them with
// 401 when it disagrees.
func (t Token) Expired(now time.Time) bool {
	if t.ExpiresIn <= 0 || t.ObtainedAt.IsZero() {
		return false
	}
	return now.After(t.ObtainedAt.Add(time.Duration(t.ExpiresIn) * time.Second))
}
