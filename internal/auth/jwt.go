package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const issuer = "commsdesk"

// Claims identifies the viewer behind a request. ViewerID is the employee id
// every mailbox operation is scoped to.
type Claims struct {
	ViewerID string `json:"viewer_id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	TeamRole string `json:"team_role"`
	jwt.RegisteredClaims
}

// GenerateToken signs an HS256 token for a viewer that expires after ttl.
func GenerateToken(viewerID, name, email, teamRole, secret string, ttl time.Duration) (string, error) {
	now := time.Now()

	claims := Claims{
		ViewerID: viewerID,
		Name:     name,
		Email:    email,
		TeamRole: teamRole,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   viewerID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ParseToken validates signature, expiry, issuer and signing method and
// returns the claims.
func ParseToken(tokenString, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{},
		func(token *jwt.Token) (any, error) {
			// Reject "none" and asymmetric algorithms before verification.
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(secret), nil
		},
		jwt.WithIssuer(issuer),
	)
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.ViewerID == "" {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

// HashPassword returns a bcrypt hash at the default cost.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword compares in constant time. Any mismatch, including an empty
// hash, is an error.
func CheckPassword(hash, password string) error {
	if hash == "" {
		return bcrypt.ErrMismatchedHashAndPassword
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
