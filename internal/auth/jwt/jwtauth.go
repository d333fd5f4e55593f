package jwt

import (
	"errors"
	"time"

	"github.com/go-chi/jwtauth/v5"
)

var ErrNoSubject = errors.New("token has no subject")

// VerifyToken checks signature and expiry and returns the admin the token was issued to.
func VerifyToken(jwtAuth *jwtauth.JWTAuth, token string) (string, error) {
	t, err := jwtauth.VerifyToken(jwtAuth, token)
	if err != nil {
		return "", err
	}
	if t.Subject() == "" {
		return "", ErrNoSubject
	}
	return t.Subject(), nil
}

// NewToken issues an admin token for subject valid for ttl.
func NewToken(jwtAuth *jwtauth.JWTAuth, ttl time.Duration, subject string) (string, error) {
	now := time.Now()
	claims := map[string]interface{}{
		"sub": subject,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	_, ts, err := jwtAuth.Encode(claims)
	if err != nil {
		return "", err
	}
	return ts, nil
}
