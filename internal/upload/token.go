package upload

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenExpiry returns the expiry of a JWT bearer token without verifying its
// signature. ok is false for opaque tokens and tokens without an exp claim.
func tokenExpiry(token string) (exp time.Time, ok bool) {
	if token == "" {
		return time.Time{}, false
	}

	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
