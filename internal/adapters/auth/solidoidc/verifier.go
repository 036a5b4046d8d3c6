// Package solidoidc verifica access tokens Solid-OIDC firmados como JWT.
package solidoidc

import (
	"context"
	"crypto"
	"errors"
	"fmt"
	"strings"
	"time"

	"idhealth/internal/ports/auth"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrVerifierNotConfigured = errors.New("solid-oidc verifier not configured")
	ErrTokenEmpty            = errors.New("token is empty")
	ErrTokenInvalid          = errors.New("token is invalid")
	ErrMissingWebID          = errors.New("token has no webid")
)

type Config struct {
	// HMACSecret habilita HS256. Útil en entornos de prueba.
	HMACSecret string

	// PublicKeyPEM habilita RS256/ES256 con la clave pública del issuer.
	PublicKeyPEM string

	// Issuer y Audience se validan solo si no están vacíos.
	Issuer   string
	Audience string

	Leeway time.Duration
	Now    func() time.Time
}

// tokenClaims es el payload esperado: webid, con fallback a sub.
type tokenClaims struct {
	jwt.RegisteredClaims
	WebID string `json:"webid"`
	Email string `json:"email"`
}

// Verifier implementa auth.AuthVerifier.
type Verifier struct {
	key     any
	methods []string
	opts    []jwt.ParserOption
}

func NewVerifier(cfg Config) (*Verifier, error) {
	secret := strings.TrimSpace(cfg.HMACSecret)
	pemKey := strings.TrimSpace(cfg.PublicKeyPEM)

	v := &Verifier{}
	switch {
	case pemKey != "":
		key, methods, err := parsePublicKey([]byte(pemKey))
		if err != nil {
			return nil, err
		}
		v.key, v.methods = key, methods
	case secret != "":
		v.key, v.methods = []byte(secret), []string{jwt.SigningMethodHS256.Alg()}
	default:
		return nil, ErrVerifierNotConfigured
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	v.opts = []jwt.ParserOption{
		jwt.WithValidMethods(v.methods),
		jwt.WithTimeFunc(now),
		jwt.WithExpirationRequired(),
	}
	if cfg.Leeway > 0 {
		v.opts = append(v.opts, jwt.WithLeeway(cfg.Leeway))
	}
	if iss := strings.TrimSpace(cfg.Issuer); iss != "" {
		v.opts = append(v.opts, jwt.WithIssuer(iss))
	}
	if aud := strings.TrimSpace(cfg.Audience); aud != "" {
		v.opts = append(v.opts, jwt.WithAudience(aud))
	}
	return v, nil
}

func parsePublicKey(b []byte) (crypto.PublicKey, []string, error) {
	if k, err := jwt.ParseRSAPublicKeyFromPEM(b); err == nil {
		return k, []string{jwt.SigningMethodRS256.Alg()}, nil
	}
	if k, err := jwt.ParseECPublicKeyFromPEM(b); err == nil {
		return k, []string{jwt.SigningMethodES256.Alg()}, nil
	}
	return nil, nil, fmt.Errorf("%w: unsupported public key", ErrVerifierNotConfigured)
}

func (v *Verifier) Verify(ctx context.Context, token string) (auth.Claims, error) {
	if v == nil || v.key == nil {
		return auth.Claims{}, ErrVerifierNotConfigured
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, ErrTokenEmpty
	}

	var parsed tokenClaims
	_, err := jwt.ParseWithClaims(token, &parsed, func(t *jwt.Token) (any, error) {
		return v.key, nil
	}, v.opts...)
	if err != nil {
		return auth.Claims{}, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}

	webID := strings.TrimSpace(parsed.WebID)
	if webID == "" {
		webID = strings.TrimSpace(parsed.Subject)
	}
	if !strings.HasPrefix(webID, "https://") && !strings.HasPrefix(webID, "http://") {
		return auth.Claims{}, ErrMissingWebID
	}

	return auth.Claims{
		UserID: webID,
		Email:  strings.TrimSpace(parsed.Email),
	}, nil
}
