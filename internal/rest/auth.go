// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-gssname.
//
// go-gssname is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Authentication errors
var (
	ErrMissingCredentials = errors.New("missing credentials")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Identity represents an authenticated caller.
type Identity struct {
	// Subject is the authenticated principal
	Subject string
	// Roles are the roles granted to the principal
	Roles []string
}

// Authenticator authenticates HTTP requests.
type Authenticator interface {
	// Name returns the authenticator type name
	Name() string
	// AuthenticateHTTP authenticates an HTTP request and returns the
	// caller identity, or an error if authentication fails
	AuthenticateHTTP(r *http.Request) (*Identity, error)
}

type identityContextKey struct{}

// WithIdentity stores an identity in the context.
func WithIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, identity)
}

// GetIdentity retrieves the identity from the context, or nil.
func GetIdentity(ctx context.Context) *Identity {
	identity, _ := ctx.Value(identityContextKey{}).(*Identity)
	return identity
}

// NoOpAuthenticator accepts every request as anonymous. Used when
// authentication is disabled.
type NoOpAuthenticator struct{}

// NewNoOpAuthenticator creates a pass-through authenticator.
func NewNoOpAuthenticator() *NoOpAuthenticator {
	return &NoOpAuthenticator{}
}

// Name returns the authenticator type name.
func (a *NoOpAuthenticator) Name() string { return "noop" }

// AuthenticateHTTP accepts the request unconditionally.
func (a *NoOpAuthenticator) AuthenticateHTTP(r *http.Request) (*Identity, error) {
	return &Identity{Subject: "anonymous"}, nil
}

// APIKeyAuthenticator authenticates requests by the X-API-Key header.
type APIKeyAuthenticator struct {
	keys map[string]*Identity
}

// NewAPIKeyAuthenticator creates an authenticator from a key-to-identity map.
func NewAPIKeyAuthenticator(keys map[string]*Identity) *APIKeyAuthenticator {
	if keys == nil {
		keys = make(map[string]*Identity)
	}
	return &APIKeyAuthenticator{keys: keys}
}

// Name returns the authenticator type name.
func (a *APIKeyAuthenticator) Name() string { return "apikey" }

// AuthenticateHTTP validates the X-API-Key header.
func (a *APIKeyAuthenticator) AuthenticateHTTP(r *http.Request) (*Identity, error) {
	key := r.Header.Get("X-API-Key")
	if key == "" {
		return nil, ErrMissingCredentials
	}

	identity, ok := a.keys[key]
	if !ok {
		return nil, ErrInvalidCredentials
	}
	return identity, nil
}

// JWTAuthenticator authenticates requests carrying an HMAC-signed bearer
// token in the Authorization header.
type JWTAuthenticator struct {
	secret   []byte
	issuer   string
	audience []string
}

// NewJWTAuthenticator creates a JWT bearer-token authenticator. Issuer and
// audience are verified only when non-empty.
func NewJWTAuthenticator(secret []byte, issuer string, audience []string) *JWTAuthenticator {
	return &JWTAuthenticator{
		secret:   secret,
		issuer:   issuer,
		audience: audience,
	}
}

// Name returns the authenticator type name.
func (a *JWTAuthenticator) Name() string { return "jwt" }

// AuthenticateHTTP validates the bearer token and extracts the subject and
// roles claims.
func (a *JWTAuthenticator) AuthenticateHTTP(r *http.Request) (*Identity, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return nil, ErrMissingCredentials
	}

	tokenString, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return nil, ErrInvalidCredentials
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}),
	}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}
	for _, aud := range a.audience {
		opts = append(opts, jwt.WithAudience(aud))
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}
	if !token.Valid {
		return nil, ErrInvalidCredentials
	}

	subject, err := claims.GetSubject()
	if err != nil || subject == "" {
		return nil, fmt.Errorf("%w: missing subject claim", ErrInvalidCredentials)
	}

	identity := &Identity{Subject: subject}
	if roles, ok := claims["roles"].([]interface{}); ok {
		for _, role := range roles {
			if s, ok := role.(string); ok {
				identity.Roles = append(identity.Roles, s)
			}
		}
	}
	return identity, nil
}
