/*
Package session implements the privileged dev-session gate.

A client that presents the shared dev key once receives a signed token in an
HttpOnly cookie; the token marks the session as privileged for its lifetime.
Protected mutations (gallery/sold deletion) check this mark and deny by default.
*/
package session

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt"
)

const (
	// CookieName is the cookie carrying the dev-session token.
	CookieName = "vb_dev_session"

	// SessionDuration is how long an unlocked dev session stays valid.
	SessionDuration = 24 * time.Hour

	// TokenIssuer identifies the issuer of the token.
	TokenIssuer = "Vaultboard-Server"
)

// Claims defines the JWT claims of a dev session token.
type Claims struct {
	jwt.StandardClaims

	// DevUnlocked marks the session as privileged.
	DevUnlocked bool `json:"dev_unlocked"`
}

// VerifyKey compares a candidate dev key against the configured one.
// Both sides are trimmed; the comparison itself is constant-time.
func VerifyKey(candidate, configured string) bool {
	c := strings.TrimSpace(candidate)
	k := strings.TrimSpace(configured)

	if k == "" {
		return false
	}

	return subtle.ConstantTimeCompare([]byte(c), []byte(k)) == 1
}

// GenerateToken creates and signs a dev-session token.
func GenerateToken(secretKey string) (string, error) {
	now := time.Now()

	claims := &Claims{
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: now.Add(SessionDuration).Unix(),
			IssuedAt:  now.Unix(),
			Issuer:    TokenIssuer,
		},
		DevUnlocked: true,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString([]byte(secretKey))
}

// ParseToken parses and validates a dev-session token string.
func ParseToken(tokenString string, secretKey string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secretKey), nil
	})

	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, errors.New("invalid or expired token")
	}

	return claims, nil
}

// SetCookie attaches the dev-session cookie to the response.
func SetCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(SessionDuration / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
