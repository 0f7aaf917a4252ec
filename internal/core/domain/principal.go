package domain

import "time"

// Claim types carried by a session principal.
const (
	ClaimSubject  = "sub"
	ClaimName     = "name"
	ClaimEmail    = "email"
	ClaimFullName = "full_name"
	ClaimRole     = "role"
)

// SessionLifetime is the absolute expiry applied to sessions issued by a
// password sign-in.
const SessionLifetime = 5 * time.Hour

// Claim is a single name/value assertion about an authenticated user.
type Claim struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Principal is the ephemeral identity attached to a session. It is never persisted.
type Principal struct {
	Claims []Claim
}

// NewPrincipal builds a principal from claims.
func NewPrincipal(claims []Claim) Principal {
	cp := make([]Claim, len(claims))
	copy(cp, claims)
	return Principal{Claims: cp}
}

// ClaimsFor returns the standard claim set of a user.
func ClaimsFor(u *User) []Claim {
	claims := []Claim{
		{Type: ClaimSubject, Value: u.ID.String()},
		{Type: ClaimName, Value: u.UserName},
		{Type: ClaimEmail, Value: u.Email},
	}
	if u.FullName != "" {
		claims = append(claims, Claim{Type: ClaimFullName, Value: u.FullName})
	}
	for _, r := range u.Roles {
		claims = append(claims, Claim{Type: ClaimRole, Value: r})
	}
	return claims
}

// Find returns the first value of the given claim type.
func (p Principal) Find(claimType string) string {
	for _, c := range p.Claims {
		if c.Type == claimType {
			return c.Value
		}
	}
	return ""
}

func (p Principal) Subject() string  { return p.Find(ClaimSubject) }
func (p Principal) Name() string     { return p.Find(ClaimName) }
func (p Principal) Email() string    { return p.Find(ClaimEmail) }
func (p Principal) FullName() string { return p.Find(ClaimFullName) }

// Roles returns every role claim value.
func (p Principal) Roles() []string {
	var roles []string
	for _, c := range p.Claims {
		if c.Type == ClaimRole {
			roles = append(roles, c.Value)
		}
	}
	return roles
}

// IsInRole reports whether the principal carries the named role claim.
func (p Principal) IsInRole(name string) bool {
	for _, r := range p.Roles() {
		if r == name {
			return true
		}
	}
	return false
}

// IsAuthenticated reports whether the principal identifies anyone.
func (p Principal) IsAuthenticated() bool {
	return p.Subject() != ""
}

// SessionOptions controls how the session mechanism issues a session.
// A zero ExpiresUTC lets the mechanism apply its default lifetime.
type SessionOptions struct {
	IsPersistent bool
	ExpiresUTC   time.Time
}
