package middleware

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
)

// Injected key type to avoid context collisions
type contextKey string

const UserContextKey = contextKey("user")

// Authenticator resolves a request to a stable user subject.
type Authenticator interface {
	Authenticate(r *http.Request) (subject string, err error)
}

// AuthMiddleware guards a route group and embeds the authenticated subject
// into the request context.
func AuthMiddleware(auth Authenticator, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subject, err := auth.Authenticate(r)
			if err != nil {
				logger.Error().Err(err).Msg("Authentication failed")
				http.Error(w, "Unauthorized: "+err.Error(), http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), UserContextKey, subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

type jwk struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	Use string `json:"use"`
	Alg string `json:"alg"`
	N   string `json:"n"`
	E   string `json:"e"`
}

type jwks struct {
	Keys []jwk `json:"keys"`
}

// JWTAuthenticator validates Auth0-issued RS256 bearer tokens against the
// tenant's JWKS, audience and issuer.
type JWTAuthenticator struct {
	audience string
	issuer   string
	keys     map[string]*rsa.PublicKey
}

// NewJWTAuthenticator fetches the tenant JWKS once at startup. Auth0 signing
// keys rotate rarely enough that a process restart on rotation is acceptable.
func NewJWTAuthenticator(ctx context.Context, audience, issuerBaseURL string) (*JWTAuthenticator, error) {
	issuer := strings.TrimRight(issuerBaseURL, "/") + "/"

	var doc jwks
	resp, err := resty.New().R().
		SetContext(ctx).
		SetResult(&doc).
		Get(issuer + ".well-known/jwks.json")
	if err != nil {
		return nil, fmt.Errorf("fetching JWKS: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("JWKS endpoint returned status %d", resp.StatusCode())
	}
	if len(doc.Keys) == 0 {
		return nil, errors.New("no keys found in JWKS")
	}

	keys := make(map[string]*rsa.PublicKey, len(doc.Keys))
	for _, k := range doc.Keys {
		if k.Kty != "RSA" || (k.Use != "" && k.Use != "sig") {
			continue
		}
		pub, err := rsaKeyFromJWK(k)
		if err != nil {
			return nil, fmt.Errorf("parsing JWKS key %q: %w", k.Kid, err)
		}
		keys[k.Kid] = pub
	}
	if len(keys) == 0 {
		return nil, errors.New("no usable RSA signing keys in JWKS")
	}

	return &JWTAuthenticator{audience: audience, issuer: issuer, keys: keys}, nil
}

func (a *JWTAuthenticator) Authenticate(r *http.Request) (string, error) {
	tokenString, err := bearerToken(r)
	if err != nil {
		return "", err
	}

	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{},
		func(t *jwt.Token) (any, error) {
			kid, _ := t.Header["kid"].(string)
			key, ok := a.keys[kid]
			if !ok {
				return nil, fmt.Errorf("unknown signing key %q", kid)
			}
			return key, nil
		},
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithAudience(a.audience),
		jwt.WithIssuer(a.issuer),
	)
	if err != nil {
		return "", fmt.Errorf("invalid token: %w", err)
	}

	subject, err := token.Claims.GetSubject()
	if err != nil || subject == "" {
		return "", errors.New("token has no subject")
	}
	return subject, nil
}

// DevAuthenticator accepts every request with a fixed subject. It exists so
// the app can run locally without an Auth0 tenant and must never be wired in
// a production configuration; the router enforces that and logs a warning
// when it is selected.
type DevAuthenticator struct {
	Subject string
}

func (a DevAuthenticator) Authenticate(r *http.Request) (string, error) {
	if sub := r.Header.Get("X-Dev-User"); sub != "" {
		return sub, nil
	}
	if a.Subject != "" {
		return a.Subject, nil
	}
	return "dev|local-user", nil
}

func bearerToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", errors.New("authorization header missing")
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", errors.New("invalid authorization header")
	}
	return parts[1], nil
}

func rsaKeyFromJWK(k jwk) (*rsa.PublicKey, error) {
	nBytes, err := base64.RawURLEncoding.DecodeString(k.N)
	if err != nil {
		return nil, fmt.Errorf("decoding modulus: %w", err)
	}
	eBytes, err := base64.RawURLEncoding.DecodeString(k.E)
	if err != nil {
		return nil, fmt.Errorf("decoding exponent: %w", err)
	}
	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(nBytes),
		E: int(new(big.Int).SetBytes(eBytes).Int64()),
	}, nil
}
