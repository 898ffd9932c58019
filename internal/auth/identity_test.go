package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFromClaims_RoundTrip(t *testing.T) {
	id := FromClaims(map[string]any{
		"sub":           "user-1",
		"username":      "alice",
		"displayName":   "Alice",
		"securityStamp": "stamp-1",
		"role":          []any{"member", "admin"},
		"salary":        float64(42000),
		"birthDate":     "1990-04-02",
		"exp":           float64(1700000000),
	})

	require.Equal(t, "user-1", id.UserID)
	require.Equal(t, "alice", id.Username)
	require.NotNil(t, id.DisplayName)
	require.Equal(t, "Alice", *id.DisplayName)
	require.Equal(t, []string{"member", "admin"}, id.Roles)
	require.NotNil(t, id.SecurityStamp)
	require.Equal(t, "stamp-1", *id.SecurityStamp)
	require.NotNil(t, id.Salary)
	require.Equal(t, float64(42000), *id.Salary)
	require.NotNil(t, id.BirthDate)
	require.Equal(t, 1990, id.BirthDate.Year())
	require.NotNil(t, id.ExpiresAt)
	require.Equal(t, time.Unix(1700000000, 0), *id.ExpiresAt)
}

func TestFromClaims_ScalarRole(t *testing.T) {
	id := FromClaims(map[string]any{"sub": "user-1", "role": "member"})
	require.Equal(t, []string{"member"}, id.Roles)
}

func TestFromClaims_RolesFallbackKey(t *testing.T) {
	id := FromClaims(map[string]any{"sub": "user-1", "roles": []any{"member"}})
	require.Equal(t, []string{"member"}, id.Roles)
}

func TestFromClaims_MalformedOptionalClaims(t *testing.T) {
	// None of these shapes must abort identity construction.
	id := FromClaims(map[string]any{
		"sub":       "user-1",
		"salary":    "not-a-number",
		"birthDate": map[string]any{"weird": true},
		"role":      float64(7),
	})

	require.Equal(t, "user-1", id.UserID)
	require.Nil(t, id.Salary)
	require.Nil(t, id.BirthDate)
	require.Nil(t, id.Roles)
}

func TestFromClaims_NumericStringSalary(t *testing.T) {
	id := FromClaims(map[string]any{"sub": "user-1", "salary": "1234.5"})
	require.NotNil(t, id.Salary)
	require.Equal(t, 1234.5, *id.Salary)
}

func TestPrincipal_RoleQueries(t *testing.T) {
	id := FromClaims(map[string]any{"sub": "user-1", "role": []any{"member", "editor"}})
	p := NewPrincipal(&id)

	require.True(t, p.IsAuthenticated())
	require.True(t, p.IsInRole("member"))
	require.False(t, p.IsInRole("admin"))
	require.True(t, p.AnyOf("admin", "editor"))
	require.False(t, p.AnyOf("admin", "owner"))
	require.True(t, p.AllOf("member", "editor"))
	require.False(t, p.AllOf("member", "admin"))
	require.True(t, p.AnyOf())
}

func TestPrincipal_Anonymous(t *testing.T) {
	require.False(t, Anonymous.IsAuthenticated())
	require.False(t, Anonymous.IsInRole("member"))
	require.False(t, Anonymous.AnyOf())
	require.False(t, Anonymous.AllOf())
	require.Equal(t, "", Anonymous.UserID())
}
