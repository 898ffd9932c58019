package crypto

import (
	"crypto/ed25519"
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTManager handles JWT token creation and verification.
//
// The gateway only verifies; token issuance lives in the credential service,
// which derives the same key from the shared master secret. CreateToken is
// kept for that service role in tooling and tests.
type JWTManager struct {
	privateKey ed25519.PrivateKey
	publicKey  ed25519.PublicKey
}

// NewJWTManager creates a new JWT manager from the master secret.
func NewJWTManager(masterSecret string) (*JWTManager, error) {
	if masterSecret == "" {
		return nil, fmt.Errorf("master secret is required")
	}

	// Derive Ed25519 key from master secret
	seed := sha256.Sum256([]byte(masterSecret))
	privateKey := ed25519.NewKeyFromSeed(seed[:])
	publicKey := privateKey.Public().(ed25519.PublicKey)

	return &JWTManager{
		privateKey: privateKey,
		publicKey:  publicKey,
	}, nil
}

// CreateToken creates a signed token for a subject. Extra claims are merged
// into the payload as-is; registered claims win on collision.
func (m *JWTManager) CreateToken(subject string, expiresAt time.Time, extra map[string]any) (string, error) {
	claims := jwt.MapClaims{}
	for k, v := range extra {
		claims[k] = v
	}
	now := time.Now()
	claims["sub"] = subject
	claims["iat"] = jwt.NewNumericDate(now)
	claims["nbf"] = jwt.NewNumericDate(now)
	claims["exp"] = jwt.NewNumericDate(expiresAt)
	claims["iss"] = "parley-server"

	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	return token.SignedString(m.privateKey)
}

// VerifyToken verifies a token's signature, shape and expiry and returns the
// raw claim map. Claim typing is intentionally left to the caller; payloads
// in the wild carry loosely shaped optional claims.
func (m *JWTManager) VerifyToken(tokenString string) (map[string]any, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodEd25519); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.publicKey, nil
	}, jwt.WithExpirationRequired())

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return map[string]any(claims), nil
	}

	return nil, fmt.Errorf("invalid token")
}
