// Package auth turns verified token claims into a typed identity and exposes
// role-membership queries over it. Claim payloads in the wild are loosely
// shaped (scalar-or-array roles, stringly-typed numbers), so every optional
// field coerces defensively: an unexpected shape yields a nil field, never an
// error that would abort authentication of the rest of the session.
package auth

import (
	"encoding/json"
	"strconv"
	"time"
)

// Identity is an immutable snapshot decoded from a verified credential.
// It is constructed fresh on every authentication event and never mutated.
type Identity struct {
	// UserID is the subject id ("sub" claim).
	UserID string
	// Username is the login name.
	Username string
	// DisplayName is an optional UI-facing name.
	DisplayName *string
	// AvatarURL is an optional profile image location.
	AvatarURL *string
	// Roles is the role list; scalar and collection claims both land here.
	Roles []string
	// SecurityStamp is the revocation nonce written by the credential
	// service. This layer only reads and compares it.
	SecurityStamp *string
	// Salary is an optional entitlement claim.
	Salary *float64
	// BirthDate is an optional profile claim.
	BirthDate *time.Time
	// ExpiresAt is the credential expiry ("exp" claim), when present.
	ExpiresAt *time.Time
}

// FromClaims builds an Identity from a raw claim map. Malformed optional
// claims are dropped rather than reported; only the subject id is required
// by callers and even that is returned as-is.
func FromClaims(claims map[string]any) Identity {
	id := Identity{
		UserID:        stringValue(claims["sub"]),
		Username:      stringValue(claims["username"]),
		DisplayName:   optionalString(claims["displayName"]),
		AvatarURL:     optionalString(claims["avatarUrl"]),
		SecurityStamp: optionalString(claims["securityStamp"]),
		Salary:        optionalFloat(claims["salary"]),
		BirthDate:     optionalTime(claims["birthDate"]),
	}

	// Role claims arrive as one scalar or many.
	id.Roles = stringList(claims["role"])
	if len(id.Roles) == 0 {
		id.Roles = stringList(claims["roles"])
	}

	if exp := optionalFloat(claims["exp"]); exp != nil {
		t := time.Unix(int64(*exp), 0)
		id.ExpiresAt = &t
	}

	return id
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}

func optionalString(v any) *string {
	if s, ok := v.(string); ok {
		return &s
	}
	return nil
}

// stringList accepts a scalar string, a []string, or a JSON-decoded []any
// with string elements. Non-string elements are skipped.
func stringList(v any) []string {
	switch val := v.(type) {
	case string:
		if val == "" {
			return nil
		}
		return []string{val}
	case []string:
		return val
	case []any:
		var out []string
		for _, item := range val {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func optionalFloat(v any) *float64 {
	switch val := v.(type) {
	case float64:
		return &val
	case float32:
		f := float64(val)
		return &f
	case int:
		f := float64(val)
		return &f
	case int64:
		f := float64(val)
		return &f
	case json.Number:
		if f, err := val.Float64(); err == nil {
			return &f
		}
	case string:
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return &f
		}
	}
	return nil
}

// optionalTime accepts an RFC 3339 string, a bare date, or epoch seconds.
func optionalTime(v any) *time.Time {
	switch val := v.(type) {
	case string:
		if t, err := time.Parse(time.RFC3339, val); err == nil {
			return &t
		}
		if t, err := time.Parse("2006-01-02", val); err == nil {
			return &t
		}
	case float64:
		t := time.Unix(int64(val), 0)
		return &t
	case json.Number:
		if n, err := val.Int64(); err == nil {
			t := time.Unix(n, 0)
			return &t
		}
	}
	return nil
}
