// Package token signs and verifies the compact bearer tokens used for API
// authentication. Tokens carry a subject (user id), a kind (access or
// refresh) and an absolute expiry, signed HS256 with a shared secret.
package token

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Kind distinguishes short-lived API tokens from long-lived renewal tokens.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

// Claims is the decoded payload of a verified token.
type Claims struct {
	UserID int64
	Kind   Kind
}

type signedClaims struct {
	Type string `json:"type"`
	jwt.RegisteredClaims
}

// Codec issues and verifies tokens with a single shared secret.
type Codec struct {
	secret []byte
}

func NewCodec(secret string) *Codec {
	return &Codec{secret: []byte(secret)}
}

// Issue creates a signed token for the given subject and kind, expiring
// ttl from now.
func (c *Codec) Issue(userID int64, kind Kind, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := signedClaims{
		Type: string(kind),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(c.secret)
}

// Verify checks signature and expiry and decodes the claims. It never
// returns an error: any malformed, mis-signed, expired or otherwise
// unusable token yields (nil, false).
func (c *Codec) Verify(tokenStr string) (*Claims, bool) {
	var sc signedClaims
	tkn, err := jwt.ParseWithClaims(tokenStr, &sc, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return c.secret, nil
	})
	if err != nil || !tkn.Valid {
		return nil, false
	}

	kind := Kind(sc.Type)
	if kind != KindAccess && kind != KindRefresh {
		return nil, false
	}
	if sc.ExpiresAt == nil {
		return nil, false
	}

	userID, err := strconv.ParseInt(sc.Subject, 10, 64)
	if err != nil {
		return nil, false
	}

	return &Claims{UserID: userID, Kind: kind}, true
}
