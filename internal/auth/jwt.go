// Package auth issues and checks the credentials that identify an actor:
// signed JWT access tokens, bcrypt password hashes and the GitHub OAuth flow.
//
// AUTHENTICATION FLOW OVERVIEW:
//  1. A user logs in with email/password (POST /api/users/login) or through
//     GitHub (/auth/github/login → /auth/github/callback)
//  2. The server issues a JWT carrying the user id ("sub") and role ("rol")
//  3. Clients send it back as "Authorization: Bearer <jwt>" or in the
//     HttpOnly "token" cookie
//  4. RequireAuth validates it and stores an authz.Actor in the request
//     context; services never see the token itself
//
// JWT STRUCTURE (three base64-encoded parts separated by dots):
//
//	HEADER.PAYLOAD.SIGNATURE
//	- Header: {"alg":"HS256","typ":"JWT"}
//	- Payload: {"sub":"42","rol":"usuario","iss":"codigoteca","exp":...}
//	- Signature: HMAC-SHA256(header+"."+payload, secretKey)
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sakif/codigoteca/internal/authz"
)

const issuer = "codigoteca"

// DefaultTokenTTL is used when NewTokenService receives a non-positive TTL.
const DefaultTokenTTL = 24 * time.Hour

// TokenService handles JWT creation and validation.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService creates a TokenService with the given secret and token
// lifetime. The secret should be at least 32 bytes of random data in
// production, e.g. JWT_SECRET=$(openssl rand -hex 32).
func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenService{secret: []byte(secret), ttl: ttl}, nil
}

// TTL is the lifetime of tokens issued by Generate.
func (s *TokenService) TTL() time.Duration { return s.ttl }

// claims is the JWT payload. "sub" holds the user id, "rol" the role the
// user had when the token was issued.
type claims struct {
	Role string `json:"rol"`
	jwt.RegisteredClaims
}

// Generate signs a token for actor that expires after the configured TTL.
func (s *TokenService) Generate(actor authz.Actor) (string, error) {
	return s.GenerateWithDuration(actor, s.ttl)
}

// GenerateWithDuration signs a token with a custom lifetime. Tests use a
// negative duration to produce expired tokens.
func (s *TokenService) GenerateWithDuration(actor authz.Actor, d time.Duration) (string, error) {
	now := time.Now()

	c := claims{
		Role: string(actor.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(actor.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Validate parses and verifies a JWT string and returns the actor it names.
//
// VALIDATION CHECKS (performed by the jwt library):
//   - Signature is valid (wasn't tampered with)
//   - Token is not expired
//   - Issuer matches "codigoteca"
//   - Algorithm is HS256 (prevents "alg":"none" confusion attacks)
//
// On top of that the subject must be a positive integer and the role one of
// the known roles.
func (s *TokenService) Validate(tokenStr string) (authz.Actor, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return authz.Actor{}, fmt.Errorf("auth: token expired")
		}
		return authz.Actor{}, fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return authz.Actor{}, fmt.Errorf("auth: invalid token claims")
	}

	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || id <= 0 {
		return authz.Actor{}, fmt.Errorf("auth: token subject %q is not a user id", c.Subject)
	}

	role, err := authz.ParseRole(c.Role)
	if err != nil {
		return authz.Actor{}, fmt.Errorf("auth: token role: %w", err)
	}

	return authz.Actor{ID: id, Role: role}, nil
}
