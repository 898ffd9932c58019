package auth

// Principal is the authorization-facing wrapper over an Identity. A nil
// identity is the anonymous principal.
type Principal struct {
	identity *Identity
}

// Anonymous is the principal of an unauthenticated or expired session.
var Anonymous = Principal{}

// NewPrincipal wraps an identity for role queries.
func NewPrincipal(identity *Identity) Principal {
	return Principal{identity: identity}
}

// IsAuthenticated reports whether a verified identity is attached.
func (p Principal) IsAuthenticated() bool {
	return p.identity != nil
}

// Identity returns the wrapped identity, or nil for the anonymous principal.
func (p Principal) Identity() *Identity {
	return p.identity
}

// UserID returns the subject id, or empty for the anonymous principal.
func (p Principal) UserID() string {
	if p.identity == nil {
		return ""
	}
	return p.identity.UserID
}

// IsInRole reports whether the principal holds the given role.
func (p Principal) IsInRole(role string) bool {
	if p.identity == nil {
		return false
	}
	for _, r := range p.identity.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// AnyOf reports whether the principal holds at least one of the roles.
// An empty role list is satisfied by any authenticated principal.
func (p Principal) AnyOf(roles ...string) bool {
	if p.identity == nil {
		return false
	}
	if len(roles) == 0 {
		return true
	}
	for _, role := range roles {
		if p.IsInRole(role) {
			return true
		}
	}
	return false
}

// AllOf reports whether the principal holds every one of the roles.
func (p Principal) AllOf(roles ...string) bool {
	if p.identity == nil {
		return false
	}
	for _, role := range roles {
		if !p.IsInRole(role) {
			return false
		}
	}
	return true
}
