package service

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	authDomain "github.com/opspilot/platform/internal/auth/domain"
	apperrors "github.com/opspilot/platform/internal/errors"
)

// tokenClaims is the JWT payload: sub, iat, exp and the comma-joined roles claim.
type tokenClaims struct {
	Roles string `json:"roles"`
	jwt.RegisteredClaims
}

// jwtTokenService implements TokenService with HS256 JWTs.
type jwtTokenService struct {
	key    []byte
	ttl    time.Duration
	logger *slog.Logger
}

// NewTokenService creates an HS256 token service. key must come from LoadSigningKey
// or otherwise be at least MinSigningKeyBytes long.
func NewTokenService(key []byte, ttl time.Duration, logger *slog.Logger) (TokenService, error) {
	if len(key) < MinSigningKeyBytes {
		return nil, ErrWeakSigningKey
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("token ttl must be positive, got %s", ttl)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &jwtTokenService{
		key:    append([]byte(nil), key...),
		ttl:    ttl,
		logger: logger,
	}, nil
}

func (s *jwtTokenService) TTL() time.Duration {
	return s.ttl
}

// Issue signs a new token. The roles claim always carries prefixed authorities.
// iat is truncated to whole seconds and exp is derived from it, so a token can
// live up to one second less than the TTL.
func (s *jwtTokenService) Issue(
	subject string,
	roles []authDomain.Role,
	now time.Time,
) (*authDomain.IssuedToken, error) {
	if strings.TrimSpace(subject) == "" {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "token subject is required")
	}

	issuedAt := now.UTC().Truncate(time.Second)
	expiresAt := issuedAt.Add(s.ttl)

	claims := tokenClaims{
		Roles: authDomain.EncodeRoleClaim(roles),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to sign token")
	}

	return &authDomain.IssuedToken{
		Token:     signed,
		TokenType: authDomain.TokenTypeBearer,
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
	}, nil
}

// Verify parses and validates token at instant now. Only HS256 is accepted and no
// clock leeway is applied: a token is expired from its exp second onward.
func (s *jwtTokenService) Verify(token string, now time.Time) (*authDomain.Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)

	claims := &tokenClaims{}
	if _, err := parser.ParseWithClaims(token, claims, s.keyFunc); err != nil {
		return nil, classifyJWTError(err)
	}

	if claims.Subject == "" {
		return nil, apperrors.Wrap(authDomain.ErrMalformedToken, "missing subject")
	}

	roles, dropped := authDomain.ParseRoleClaim(claims.Roles)
	if len(dropped) > 0 {
		s.logger.Warn("dropped unknown roles from token claim",
			slog.String("subject", claims.Subject),
			slog.Any("dropped", dropped))
	}

	result := &authDomain.Claims{
		Subject:   claims.Subject,
		Roles:     roles,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		result.IssuedAt = claims.IssuedAt.Time
	}
	return result, nil
}

func (s *jwtTokenService) keyFunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
	}
	return s.key, nil
}

// classifyJWTError maps golang-jwt failures onto the token error kinds.
// Signature checks run before claim validation, so a forged token is always
// reported as a signature mismatch even when it is also expired.
func classifyJWTError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return apperrors.Wrap(authDomain.ErrSignatureMismatch, err.Error())
	case errors.Is(err, jwt.ErrTokenExpired):
		return authDomain.ErrExpiredToken
	default:
		return apperrors.Wrap(authDomain.ErrMalformedToken, err.Error())
	}
}
