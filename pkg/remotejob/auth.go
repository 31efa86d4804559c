package remotejob

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Credential authorizes outbound provider requests.
//
// Credentials are applied per request. Implementations that mint
// short-lived material mint it fresh on every Apply call.
type Credential interface {
	// Validate reports whether the credential material is well formed.
	Validate() error

	// Apply adds authorization to req. now is the mint time for
	// short-lived material.
	Apply(req *http.Request, now time.Time) error
}

// BearerKey returns a Credential that sends key as an
// Authorization: Bearer header.
func BearerKey(key string) Credential { return bearerKey(key) }

type bearerKey string

func (k bearerKey) Validate() error {
	if k == "" {
		return &Error{Kind: KindInvalidCredential, Message: "empty api key"}
	}
	return nil
}

func (k bearerKey) Apply(req *http.Request, _ time.Time) error {
	req.Header.Set("Authorization", "Bearer "+string(k))
	return nil
}

// HeaderKey returns a Credential that sends value in the named header,
// for providers that use keys like xi-api-key.
func HeaderKey(name, value string) Credential {
	return headerKey{name: name, value: value}
}

type headerKey struct{ name, value string }

func (k headerKey) Validate() error {
	if k.name == "" || k.value == "" {
		return &Error{Kind: KindInvalidCredential, Message: "empty header credential"}
	}
	return nil
}

func (k headerKey) Apply(req *http.Request, _ time.Time) error {
	req.Header.Set(k.name, k.value)
	return nil
}

const (
	// signedTokenTTL is the lifetime of a minted request token.
	signedTokenTTL = 30 * time.Minute

	// signedTokenLeeway backdates nbf to absorb clock skew.
	signedTokenLeeway = 5 * time.Second
)

// SignedToken returns a Credential that mints a fresh HS256 JWT for
// every request. key must be "ACCESS_KEY:SECRET_KEY": the access key
// becomes the token issuer and the secret key signs it. Tokens carry
// exp = now+30m and nbf = now-5s and are never cached, so a long run
// keeps working past any single token's lifetime.
func SignedToken(key string) Credential {
	return &signedToken{key: key}
}

type signedToken struct {
	key string
}

func (s *signedToken) split() (issuer, secret string, err error) {
	parts := strings.Split(s.key, ":")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", &Error{
			Kind:    KindInvalidCredential,
			Message: `api key must have the form "ACCESS_KEY:SECRET_KEY"`,
		}
	}
	return parts[0], parts[1], nil
}

func (s *signedToken) Validate() error {
	_, _, err := s.split()
	return err
}

func (s *signedToken) Apply(req *http.Request, now time.Time) error {
	issuer, secret, err := s.split()
	if err != nil {
		return err
	}

	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		ExpiresAt: jwt.NewNumericDate(now.Add(signedTokenTTL)),
		NotBefore: jwt.NewNumericDate(now.Add(-signedTokenLeeway)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return fmt.Errorf("sign request token: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
	return nil
}
