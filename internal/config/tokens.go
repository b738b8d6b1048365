package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Tokens signs and verifies participant tokens. The token only proves the
// server handed it out; the participant ID inside is an opaque UUID.
type Tokens struct {
	secret        []byte
	signingMethod jwt.SigningMethod
	tokenLifetime time.Duration
}

type ParticipantClaims struct {
	jwt.RegisteredClaims
}

func (c ParticipantClaims) Participant() string {
	return c.Subject
}

func loadSecret() ([]byte, error) {
	secret, ok := os.LookupEnv("TOKEN_SECRET")
	if ok {
		return []byte(secret), nil
	}
	secretPath, ok := os.LookupEnv("TOKEN_SECRET_FILE")
	if !ok {
		return nil, fmt.Errorf("no TOKEN_SECRET or TOKEN_SECRET_FILE env variable set")
	}
	data, err := os.ReadFile(secretPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read token secret: %w", err)
	}
	return []byte(strings.TrimSpace(string(data))), nil
}

func NewTokens() (*Tokens, error) {
	secret, err := loadSecret()
	if err != nil {
		return nil, err
	}
	lifetime, err := lookupDuration("TOKEN_LIFETIME", 30*24*time.Hour)
	if err != nil {
		return nil, err
	}
	return NewTokensWithSecret(secret, lifetime)
}

func NewTokensWithSecret(secret []byte, lifetime time.Duration) (*Tokens, error) {
	if len(secret) < 16 {
		return nil, errors.New("token secret must be at least 16 bytes long")
	}
	return &Tokens{
		secret:        secret,
		signingMethod: jwt.SigningMethodHS256,
		tokenLifetime: lifetime,
	}, nil
}

func (t *Tokens) Lifetime() time.Duration {
	return t.tokenLifetime
}

// Issue mints a token for a new participant.
func (t *Tokens) Issue() (participant, token string, err error) {
	participant = uuid.NewString()
	now := time.Now()
	claims := ParticipantClaims{jwt.RegisteredClaims{
		Subject:   participant,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(t.tokenLifetime)),
	}}
	token, err = jwt.NewWithClaims(t.signingMethod, claims).SignedString(t.secret)
	return participant, token, err
}

func (t *Tokens) Parse(token string) (*ParticipantClaims, error) {
	parsed, err := jwt.ParseWithClaims(
		token,
		&ParticipantClaims{},
		func(*jwt.Token) (interface{}, error) {
			return t.secret, nil
		},
		jwt.WithValidMethods([]string{t.signingMethod.Alg()}),
	)
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*ParticipantClaims)
	if !ok {
		return nil, fmt.Errorf("malformed claims")
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return nil, fmt.Errorf("malformed participant: %w", err)
	}
	return claims, nil
}
