package user

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/codeup/novabook/internal"
	"github.com/codeup/novabook/internal/core/common/password"
	userDatamodel "github.com/codeup/novabook/internal/core/datamodel/user"
)

type RepositoryAPI interface {
	Create(ctx context.Context, u *userDatamodel.User, roles []string) error
	GetByID(ctx context.Context, id int64) (*userDatamodel.User, error)
	GetByEmail(ctx context.Context, email string) (*userDatamodel.User, error)
	List(ctx context.Context) ([]*userDatamodel.User, error)
	Update(ctx context.Context, u *userDatamodel.User) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	Delete(ctx context.Context, id int64) error
	AssignRole(ctx context.Context, userID int64, role string) error
	RemoveRole(ctx context.Context, userID int64, role string) error
	ListRoles(ctx context.Context) ([]*userDatamodel.Role, error)
}

type Service struct {
	repo              RepositoryAPI
	bcryptCost        int
	minPasswordLength int
	logger            *slog.Logger
}

func NewService(repo RepositoryAPI, cfg internal.SecurityConfig, logger *slog.Logger) *Service {
	return &Service{
		repo:              repo,
		bcryptCost:        cfg.BCryptCost,
		minPasswordLength: cfg.PasswordMinLength,
		logger:            logger,
	}
}

func (s *Service) CreateUser(ctx context.Context, dto CreateUserDTO) (*User, error) {
	dto.Normalize()
	if appErr := dto.Validate(s.minPasswordLength); appErr != nil {
		s.logger.Warn("user validation failed", "error", appErr.GetDetailedMessage())
		return nil, appErr
	}

	if err := s.ensureEmailFree(ctx, dto.Email, 0); err != nil {
		return nil, err
	}

	hash, err := password.Hash(dto.Password, s.bcryptCost)
	if err != nil {
		return nil, internal.NewInternalError("failed to hash password", err)
	}

	data := &userDatamodel.User{
		Name:         dto.Name,
		Email:        dto.Email,
		PasswordHash: hash,
		Active:       true,
	}
	if err := s.repo.Create(ctx, data, dto.Roles); err != nil {
		s.logger.Error("failed to create user", "error", err, "email", dto.Email)
		return nil, err
	}

	s.logger.Info("user created", "user_id", data.ID, "email", data.Email, "roles", dto.Roles)
	return s.GetUser(ctx, data.ID)
}

func (s *Service) GetUser(ctx context.Context, id int64) (*User, error) {
	data, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromDataModel(data), nil
}

func (s *Service) GetByEmail(ctx context.Context, email string) (*User, error) {
	data, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, err
	}
	return FromDataModel(data), nil
}

func (s *Service) ListUsers(ctx context.Context) ([]*User, error) {
	data, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list users", "error", err)
		return nil, err
	}
	return FromDataModelSlice(data), nil
}

func (s *Service) UpdateUser(ctx context.Context, id int64, dto UpdateUserDTO) (*User, error) {
	dto.Normalize()
	if appErr := dto.Validate(); appErr != nil {
		return nil, appErr
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if dto.Email != current.Email {
		if err := s.ensureEmailFree(ctx, dto.Email, id); err != nil {
			return nil, err
		}
	}

	current.Name = dto.Name
	current.Email = dto.Email
	if dto.Active != nil {
		current.Active = *dto.Active
	}
	if err := s.repo.Update(ctx, current); err != nil {
		s.logger.Error("failed to update user", "error", err, "user_id", id)
		return nil, err
	}

	s.logger.Info("user updated", "user_id", id, "active", current.Active)
	return FromDataModel(current), nil
}

// ChangePassword replaces the password of id after checking the current one.
func (s *Service) ChangePassword(ctx context.Context, id int64, dto ChangePasswordDTO) error {
	if appErr := dto.Validate(s.minPasswordLength); appErr != nil {
		return appErr
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := password.Verify(current.PasswordHash, dto.CurrentPassword); err != nil {
		if errors.Is(err, password.ErrMismatch) {
			s.logger.Warn("password change rejected", "user_id", id)
			return internal.ErrInvalidCredentials
		}
		return internal.NewInternalError("failed to verify password", err)
	}

	hash, err := password.Hash(dto.NewPassword, s.bcryptCost)
	if err != nil {
		return internal.NewInternalError("failed to hash password", err)
	}
	if err := s.repo.UpdatePassword(ctx, id, hash); err != nil {
		s.logger.Error("failed to update password", "error", err, "user_id", id)
		return err
	}

	s.logger.Info("password changed", "user_id", id)
	return nil
}

// DeleteUser removes id. actorID is the operator issuing the request; nobody
// can delete their own account.
func (s *Service) DeleteUser(ctx context.Context, actorID, id int64) error {
	if actorID == id {
		return internal.ErrSelfDelete
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete user", "error", err, "user_id", id)
		return err
	}
	s.logger.Info("user deleted", "user_id", id, "deleted_by", actorID)
	return nil
}

func (s *Service) AssignRole(ctx context.Context, userID int64, dto AssignRoleDTO) (*User, error) {
	dto.Normalize()
	if appErr := dto.Validate(); appErr != nil {
		return nil, appErr
	}
	if err := s.repo.AssignRole(ctx, userID, dto.Role); err != nil {
		s.logger.Error("failed to assign role", "error", err, "user_id", userID, "role", dto.Role)
		return nil, err
	}
	s.logger.Info("role assigned", "user_id", userID, "role", dto.Role)
	return s.GetUser(ctx, userID)
}

func (s *Service) RemoveRole(ctx context.Context, userID int64, role string) (*User, error) {
	role = strings.TrimSpace(role)
	if err := s.repo.RemoveRole(ctx, userID, role); err != nil {
		s.logger.Error("failed to remove role", "error", err, "user_id", userID, "role", role)
		return nil, err
	}
	s.logger.Info("role removed", "user_id", userID, "role", role)
	return s.GetUser(ctx, userID)
}

func (s *Service) ListRoles(ctx context.Context) ([]*Role, error) {
	data, err := s.repo.ListRoles(ctx)
	if err != nil {
		return nil, err
	}
	roles := make([]*Role, len(data))
	for i, r := range data {
		roles[i] = RoleFromDataModel(r)
	}
	return roles, nil
}

func (s *Service) ensureEmailFree(ctx context.Context, email string, selfID int64) error {
	existing, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if internal.IsType(err, internal.ErrorTypeNotFound) {
			return nil
		}
		return err
	}
	if existing.ID != selfID {
		return internal.ErrDuplicateEmail
	}
	return nil
}
