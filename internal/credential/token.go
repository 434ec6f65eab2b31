package credential

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenKey is the keyring entry that holds the backend session token.
const TokenKey = "auth-token"

// TokenExpired reports whether the session token's exp claim has passed.
// The token is decoded without signature verification: the backend owns
// validation, this check only avoids sending requests that are certain
// to get a 401. A token that cannot be decoded is treated as expired.
func TokenExpired(token string) bool {
	if token == "" {
		return true
	}

	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return true
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return true
	}

	return exp.Time.Before(time.Now())
}
