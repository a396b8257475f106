package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// DefaultKeyIssuer is the issuer claim stamped on store API keys.
	DefaultKeyIssuer = "shelf-auth"
	// DefaultKeyAudience is the audience claim expected by the store API.
	DefaultKeyAudience = "shelf-api"
)

var (
	ErrMissingSigningSecret = errors.New("key issuer: signing secret required")
	ErrMissingIssuer        = errors.New("key issuer: issuer required")
	ErrMissingAudience      = errors.New("key issuer: audience required")
	ErrInvalidKeyTTL        = errors.New("key issuer: ttl must be positive")
	ErrMissingSubject       = errors.New("key issuer: subject required")
	ErrInvalidKey           = errors.New("key issuer: invalid key")
	ErrExpiredKey           = errors.New("key issuer: key expired")
)

// KeyIssuerConfig configures the store API key issuer.
type KeyIssuerConfig struct {
	SigningSecret []byte
	Issuer        string
	Audience      string
	KeyTTL        time.Duration
	Clock         func() time.Time
}

// KeyIssuer mints and validates HS256 API keys for the store API.
type KeyIssuer struct {
	signingSecret []byte
	issuer        string
	audience      string
	keyTTL        time.Duration
	clock         func() time.Time
}

// NewKeyIssuer validates the configuration and constructs a KeyIssuer.
func NewKeyIssuer(cfg KeyIssuerConfig) (*KeyIssuer, error) {
	if len(cfg.SigningSecret) == 0 {
		return nil, ErrMissingSigningSecret
	}
	issuer := strings.TrimSpace(cfg.Issuer)
	if issuer == "" {
		return nil, ErrMissingIssuer
	}
	audience := strings.TrimSpace(cfg.Audience)
	if audience == "" {
		return nil, ErrMissingAudience
	}
	if cfg.KeyTTL <= 0 {
		return nil, ErrInvalidKeyTTL
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	return &KeyIssuer{
		signingSecret: append([]byte(nil), cfg.SigningSecret...),
		issuer:        issuer,
		audience:      audience,
		keyTTL:        cfg.KeyTTL,
		clock:         clock,
	}, nil
}

// IssueKey produces a signed key for subject and its expiry time.
func (i *KeyIssuer) IssueKey(_ context.Context, subject string) (string, time.Time, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return "", time.Time{}, ErrMissingSubject
	}

	now := i.clock().UTC()
	expiresAt := now.Add(i.keyTTL).UTC()

	registered := jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    i.issuer,
		Audience:  []string{i.audience},
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, registered)
	signed, err := token.SignedString(i.signingSecret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// ValidateKey checks signature, issuer, audience and expiry and returns the key subject.
func (i *KeyIssuer) ValidateKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidKey)
	}

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(
		key,
		claims,
		func(token *jwt.Token) (interface{}, error) {
			if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
				return nil, fmt.Errorf("unexpected signing algorithm: %s", token.Method.Alg())
			}
			return i.signingSecret, nil
		},
		jwt.WithAudience(i.audience),
		jwt.WithIssuer(i.issuer),
		jwt.WithTimeFunc(i.clock),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrExpiredKey
		}
		return "", fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return "", ErrMissingSubject
	}
	return claims.Subject, nil
}
