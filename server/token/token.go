// Package token issues and checks the bearer tokens that grant a client
// access to a single interpreter session.
package token

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// Issuer is the issuer claim of every token.
	Issuer = "bls"

	// Lifetime is how long a token is valid for after it is issued.
	Lifetime = time.Hour
)

// Generate creates a signed token whose subject is the given session.
func Generate(secret []byte, session uuid.UUID) (string, error) {
	claims := &jwt.MapClaims{
		"iss": Issuer,
		"exp": time.Now().Add(Lifetime).Unix(),
		"sub": session.String(),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)

	tokStr, err := tok.SignedString(secret)
	if err != nil {
		return "", err
	}
	return tokStr, nil
}

// Validate checks that tok was signed with secret and has not expired, and
// returns the session it was issued for.
func Validate(tok string, secret []byte) (uuid.UUID, error) {
	var session uuid.UUID

	_, err := jwt.Parse(tok, func(t *jwt.Token) (interface{}, error) {
		subj, err := t.Claims.GetSubject()
		if err != nil {
			return nil, fmt.Errorf("cannot get subject: %w", err)
		}

		session, err = uuid.Parse(subj)
		if err != nil {
			return nil, fmt.Errorf("cannot parse subject UUID: %w", err)
		}

		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}), jwt.WithIssuer(Issuer), jwt.WithLeeway(time.Minute))

	if err != nil {
		return uuid.Nil, err
	}

	return session, nil
}

// Get gets the bearer token from the Authorization header of req.
func Get(req *http.Request) (string, error) {
	authHeader := strings.TrimSpace(req.Header.Get("Authorization"))

	if authHeader == "" {
		return "", fmt.Errorf("no authorization header present")
	}

	authParts := strings.SplitN(authHeader, " ", 2)
	if len(authParts) != 2 {
		return "", fmt.Errorf("authorization header not in Bearer format")
	}

	scheme := strings.TrimSpace(strings.ToLower(authParts[0]))
	token := strings.TrimSpace(authParts[1])

	if scheme != "bearer" {
		return "", fmt.Errorf("authorization header not in Bearer format")
	}

	return token, nil
}
