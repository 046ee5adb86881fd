package model

import "time"

type IdentifierType string

const (
	IdentifierNip IdentifierType = "Nip"
)

type ContextIdentifier struct {
	Type  IdentifierType `json:"type"`
	Value string         `json:"value"`
}

type AuthorisationChallengeResponse struct {
	Challenge string    `json:"challenge"`
	Timestamp time.Time `json:"timestamp"`
}

// InitTokenAuthenticationRequest starts token based authentication.
// EncryptedToken is the pre-shared KSeF token concatenated with the challenge
// timestamp and encrypted with the platform public key.
type InitTokenAuthenticationRequest struct {
	Challenge         string            `json:"challenge"`
	ContextIdentifier ContextIdentifier `json:"contextIdentifier"`
	EncryptedToken    []byte            `json:"encryptedToken"`
}

type AuthenticationToken struct {
	Token string `json:"token"`
}

type AuthenticationInitResponse struct {
	ReferenceNumber     string              `json:"referenceNumber"`
	AuthenticationToken AuthenticationToken `json:"authenticationToken"`
}

// AuthenticationStatus is the asynchronous outcome of one authentication
// attempt, reported per reference number.
type AuthenticationStatus struct {
	StartDate time.Time  `json:"startDate"`
	Status    StatusInfo `json:"status"`
}

type TokenInfo struct {
	Token      string    `json:"token"`
	ValidUntil time.Time `json:"validUntil"`
}

// Credential is the access/refresh token pair redeemed after a successful
// authentication. Immutable once issued; renewal replaces it wholesale.
type Credential struct {
	AccessToken  TokenInfo `json:"accessToken"`
	RefreshToken TokenInfo `json:"refreshToken"`
}

// ValidAt reports whether both sub-tokens are still valid at the given time,
// keeping skew as a safety margin before actual expiry.
func (c *Credential) ValidAt(now time.Time, skew time.Duration) bool {
	if c == nil {
		return false
	}
	if c.AccessToken.ValidUntil.IsZero() || c.RefreshToken.ValidUntil.IsZero() {
		return false
	}
	limit := now.Add(skew)
	return c.AccessToken.ValidUntil.After(limit) && c.RefreshToken.ValidUntil.After(limit)
}
