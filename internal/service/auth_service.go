package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"thermo_relay/internal/repository"
)

const (
	// defaultTokenTTL applies when AuthOptions.TokenTTL is unset.
	defaultTokenTTL = time.Hour
	tokenIssuer     = "thermo_relay"

	MinUsernameLength = 3
	MaxUsernameLength = 64
	MinPasswordLength = 8
	// bcrypt ignores input past 72 bytes.
	maxPasswordBytes = 72
)

// AuthOptions carries the token settings from the process config.
type AuthOptions struct {
	SigningKey string
	TokenTTL   time.Duration
}

var (
	// ErrInvalidCredentials covers both an unknown operator and a wrong
	// password, so callers cannot probe for usernames.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrWeakCredentials    = errors.New("credentials do not meet requirements")
	ErrInvalidToken       = errors.New("invalid token")
)

// AuthService registers operators and issues the bearer tokens that guard
// the mutating routes.
type AuthService struct {
	operators  repository.OperatorStore
	signingKey []byte
	tokenTTL   time.Duration
	now        func() time.Time
}

func NewAuthService(operators repository.OperatorStore, opts AuthOptions) *AuthService {
	ttl := opts.TokenTTL
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &AuthService{
		operators:  operators,
		signingKey: []byte(opts.SigningKey),
		tokenTTL:   ttl,
		now:        time.Now,
	}
}

// SignUp registers an operator. Usernames are case-insensitive and stored
// lower-case. repository.ErrOperatorExists passes through.
func (s *AuthService) SignUp(ctx context.Context, username, password string) (int, error) {
	name := normalizeUsername(username)
	if err := checkCredentials(name, password); err != nil {
		return 0, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}
	return s.operators.CreateOperator(ctx, name, string(hash))
}

// Claims identifies the operator in the Subject.
type Claims struct {
	jwt.RegisteredClaims
}

// GenerateToken checks the credentials and returns a signed token.
func (s *AuthService) GenerateToken(ctx context.Context, username, password string) (string, error) {
	op, err := s.operators.OperatorByName(ctx, normalizeUsername(username))
	if err != nil {
		return "", err
	}
	if op == nil {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(op.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}
	return s.issueToken(op.ID)
}

// ParseToken validates the signature, issuer and expiry and returns the
// operator id.
func (s *AuthService) ParseToken(accessToken string) (int, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(accessToken, claims,
		func(*jwt.Token) (interface{}, error) { return s.signingKey, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	id, err := strconv.Atoi(claims.Subject)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: bad subject %q", ErrInvalidToken, claims.Subject)
	}
	return id, nil
}

func (s *AuthService) issueToken(operatorID int) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   strconv.Itoa(operatorID),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	})
	return token.SignedString(s.signingKey)
}

func normalizeUsername(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func checkCredentials(username, password string) error {
	switch {
	case len(username) < MinUsernameLength || len(username) > MaxUsernameLength:
		return fmt.Errorf("%w: username must be %d to %d characters", ErrWeakCredentials, MinUsernameLength, MaxUsernameLength)
	case strings.TrimSpace(password) == "" || len(password) < MinPasswordLength:
		return fmt.Errorf("%w: password must be at least %d characters", ErrWeakCredentials, MinPasswordLength)
	case len(password) > maxPasswordBytes:
		return fmt.Errorf("%w: password must be at most %d bytes", ErrWeakCredentials, maxPasswordBytes)
	}
	return nil
}
