package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/yungbote/shadownav-backend/internal/clients/memberstack"
	"github.com/yungbote/shadownav-backend/internal/platform/logger"
	"github.com/yungbote/shadownav-backend/internal/utils"
)

type ExchangeResult struct {
	MemberID  string
	Token     string
	ExpiresIn int
}

// AuthService exchanges Memberstack tokens for short-lived backend JWTs and
// verifies them on every request.
type AuthService interface {
	Exchange(ctx context.Context, memberstackToken string) (*ExchangeResult, error)
	Verify(token string) (string, error)
	TTLSeconds() int
}

type authService struct {
	log         *logger.Logger
	memberstack memberstack.Client
	secret      []byte
	issuer      string
	audience    string
	ttlSeconds  int
}

func NewAuthService(log *logger.Logger, ms memberstack.Client) (AuthService, error) {
	l := log.With("service", "AuthService")

	secret := utils.GetEnv("JWT_SIGNING_SECRET", "", l)
	if secret == "" {
		return nil, fmt.Errorf("missing JWT_SIGNING_SECRET")
	}

	return &authService{
		log:         l,
		memberstack: ms,
		secret:      []byte(secret),
		issuer:      utils.GetEnv("JWT_ISSUER", "", l),
		audience:    utils.GetEnv("JWT_AUDIENCE", "", l),
		ttlSeconds:  utils.GetEnvAsInt("ACCESS_TOKEN_TTL_SECONDS", 900, l),
	}, nil
}

func (s *authService) TTLSeconds() int { return s.ttlSeconds }

func (s *authService) Exchange(ctx context.Context, memberstackToken string) (*ExchangeResult, error) {
	memberID, err := s.memberstack.VerifyToken(ctx, memberstackToken)
	if err != nil {
		if errors.Is(err, memberstack.ErrVerificationFailed) {
			return nil, err
		}
		return nil, upstream("memberstack", err)
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub": memberID,
		"iat": now.Unix(),
		"exp": now.Add(time.Duration(s.ttlSeconds) * time.Second).Unix(),
	}
	if s.issuer != "" {
		claims["iss"] = s.issuer
	}
	if s.audience != "" {
		claims["aud"] = s.audience
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &ExchangeResult{MemberID: memberID, Token: token, ExpiresIn: s.ttlSeconds}, nil
}

// Verify parses and validates a backend JWT and returns its subject.
func (s *authService) Verify(token string) (string, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256"})}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}
	if s.audience != "" {
		opts = append(opts, jwt.WithAudience(s.audience))
	}

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		return "", err
	}

	sub, err := parsed.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", fmt.Errorf("token missing subject")
	}
	return sub, nil
}
