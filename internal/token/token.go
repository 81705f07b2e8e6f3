// Package token issues and verifies the signed, time-limited tokens used for
// bearer authentication and group-invite links. Tokens carry a small string
// payload and their issuance time; validity is decided at verification time
// against a caller-supplied maximum age, so the same token can be checked
// with different windows. There is no revocation list: expiry is the only
// invalidation path.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrExpired means the signature checked out but the token is older
	// than the allowed window.
	ErrExpired = errors.New("token expired")
	// ErrInvalid covers bad signatures and malformed tokens.
	ErrInvalid = errors.New("token invalid")
)

type claims struct {
	jwt.RegisteredClaims
	Data map[string]string `json:"data"`
}

// Service signs and verifies payload tokens with a shared HS256 secret.
type Service struct {
	secret []byte
	now    func() time.Time
}

func NewService(secret []byte) *Service {
	return &Service{secret: secret, now: time.Now}
}

// Issue signs payload into an opaque, URL-safe token string stamped with the
// current time. No expiry is embedded; see Verify.
func (s *Service) Issue(payload map[string]string) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(s.now()),
		},
		Data: payload,
	})
	return t.SignedString(s.secret)
}

// Verify checks the signature and issuance age of tok and returns its
// payload. Tokens older than maxAge yield ErrExpired; everything else that
// goes wrong yields ErrInvalid.
func (s *Service) Verify(tok string, maxAge time.Duration) (map[string]string, error) {
	parsed := &claims{}
	t, err := jwt.ParseWithClaims(tok, parsed, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !t.Valid {
		return nil, ErrInvalid
	}
	if parsed.IssuedAt == nil {
		return nil, ErrInvalid
	}
	// iat is stored at second precision; compare with a clock truncated the
	// same way or tokens die up to a second before the boundary.
	if s.now().Truncate(jwt.TimePrecision).Sub(parsed.IssuedAt.Time) > maxAge {
		return nil, ErrExpired
	}
	return parsed.Data, nil
}
