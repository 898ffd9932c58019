package crypto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestVerifyToken_RoundTrip(t *testing.T) {
	m, err := NewJWTManager("test-secret")
	require.NoError(t, err)

	token, err := m.CreateToken("user-1", time.Now().Add(time.Hour), map[string]any{
		"username": "alice",
		"roles":    []string{"member", "admin"},
	})
	require.NoError(t, err)

	claims, err := m.VerifyToken(token)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims["sub"])
	require.Equal(t, "alice", claims["username"])
}

func TestVerifyToken_Expired(t *testing.T) {
	m, err := NewJWTManager("test-secret")
	require.NoError(t, err)

	token, err := m.CreateToken("user-1", time.Now().Add(-time.Minute), nil)
	require.NoError(t, err)

	_, err = m.VerifyToken(token)
	require.Error(t, err)
}

func TestVerifyToken_WrongSecret(t *testing.T) {
	signer, err := NewJWTManager("secret-a")
	require.NoError(t, err)
	verifier, err := NewJWTManager("secret-b")
	require.NoError(t, err)

	token, err := signer.CreateToken("user-1", time.Now().Add(time.Hour), nil)
	require.NoError(t, err)

	_, err = verifier.VerifyToken(token)
	require.Error(t, err)
}

func TestVerifyToken_Garbage(t *testing.T) {
	m, err := NewJWTManager("test-secret")
	require.NoError(t, err)

	_, err = m.VerifyToken("not-a-token")
	require.Error(t, err)
}

func TestNewJWTManager_EmptySecret(t *testing.T) {
	_, err := NewJWTManager("")
	require.Error(t, err)
}
