package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/codeup/novabook/internal"
	"github.com/codeup/novabook/internal/core/common/password"
	"github.com/codeup/novabook/internal/observability/metrics"
)

type RepositoryAPI interface {
	GetAccountByEmail(ctx context.Context, email string) (*Account, error)
	GetAccountByID(ctx context.Context, id int64) (*Account, error)
}

type ServiceAPI interface {
	Authenticate(ctx context.Context, dto LoginDTO, clientIP string) (AuthTokens, error)
	RefreshTokens(ctx context.Context, refreshToken string) (AuthTokens, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
}

type Service struct {
	repo    RepositoryAPI
	tokens  TokenGeneratorAPI
	limiter *LoginLimiter
	logger  *slog.Logger
	verify  func(hash, plain string) error
}

// NewService creates a new auth service. A nil limiter disables throttling.
func NewService(repo RepositoryAPI, tokens TokenGeneratorAPI, limiter *LoginLimiter, logger *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		tokens:  tokens,
		limiter: limiter,
		logger:  logger,
		verify:  password.Verify,
	}
}

// Authenticate validates credentials and returns tokens. Unknown emails and
// wrong passwords produce the same error.
func (s *Service) Authenticate(ctx context.Context, dto LoginDTO, clientIP string) (AuthTokens, error) {
	dto.Normalize()
	if appErr := dto.Validate(); appErr != nil {
		return AuthTokens{}, appErr
	}

	if s.limiter != nil && !s.limiter.Allow(dto.Email, clientIP) {
		metrics.ObserveLogin("throttled")
		s.logger.Warn("login throttled", "email", dto.Email, "client_ip", clientIP)
		return AuthTokens{}, internal.NewRateLimitError("Too many login attempts, try again later")
	}

	acct, err := s.repo.GetAccountByEmail(ctx, dto.Email)
	if err != nil {
		if internal.IsType(err, internal.ErrorTypeNotFound) {
			// Pay one bcrypt comparison like a wrong password does.
			_ = s.verify(password.DummyHash(), dto.Password)
			metrics.ObserveLogin("invalid")
			s.logger.Warn("login failed: unknown email", "email", dto.Email)
			return AuthTokens{}, internal.ErrInvalidCredentials
		}
		s.logger.Error("login lookup failed", "error", err, "email", dto.Email)
		return AuthTokens{}, err
	}

	if err := s.verify(acct.PasswordHash, dto.Password); err != nil {
		metrics.ObserveLogin("invalid")
		if !errors.Is(err, password.ErrMismatch) {
			s.logger.Error("password verification failed", "error", err, "user_id", acct.ID)
		} else {
			s.logger.Warn("login failed: wrong password", "user_id", acct.ID)
		}
		return AuthTokens{}, internal.ErrInvalidCredentials
	}

	if !acct.Active {
		metrics.ObserveLogin("inactive")
		s.logger.Warn("login rejected: inactive user", "user_id", acct.ID)
		return AuthTokens{}, internal.ErrUserInactive
	}

	tokens, err := s.issue(acct)
	if err != nil {
		return AuthTokens{}, err
	}

	if s.limiter != nil {
		s.limiter.Reset(dto.Email, clientIP)
	}
	metrics.ObserveLogin("success")
	s.logger.Info("user logged in", "user_id", acct.ID, "roles", acct.Roles)
	return tokens, nil
}

// RefreshTokens validates refresh token and returns new tokens. Roles are
// reloaded so a role change takes effect on the next refresh.
func (s *Service) RefreshTokens(ctx context.Context, refreshToken string) (AuthTokens, error) {
	if appErr := (RefreshTokenDTO{RefreshToken: refreshToken}).Validate(); appErr != nil {
		return AuthTokens{}, appErr
	}

	claims, err := s.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		return AuthTokens{}, err
	}

	acct, err := s.repo.GetAccountByID(ctx, claims.UserID)
	if err != nil {
		if internal.IsType(err, internal.ErrorTypeNotFound) {
			return AuthTokens{}, internal.ErrInvalidToken
		}
		return AuthTokens{}, err
	}
	if !acct.Active {
		return AuthTokens{}, internal.ErrUserInactive
	}

	s.logger.Info("tokens refreshed", "user_id", acct.ID)
	return s.issue(acct)
}

// ValidateAccessToken validates access token and returns claims
func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.tokens.ValidateAccessToken(tokenString)
}

func (s *Service) issue(acct *Account) (AuthTokens, error) {
	access, err := s.tokens.GenerateAccessToken(acct)
	if err != nil {
		return AuthTokens{}, internal.NewInternalError("failed to issue access token", err)
	}
	refresh, err := s.tokens.GenerateRefreshToken(acct)
	if err != nil {
		return AuthTokens{}, internal.NewInternalError("failed to issue refresh token", err)
	}
	return AuthTokens{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.tokens.AccessTTL().Seconds()),
	}, nil
}
