package partner

import (
	"context"
	"log/slog"
	"strings"

	"github.com/codeup/novabook/internal"
	partnerDatamodel "github.com/codeup/novabook/internal/core/datamodel/partner"
)

type RepositoryAPI interface {
	Create(ctx context.Context, p *partnerDatamodel.Partner) error
	GetByID(ctx context.Context, id int64) (*partnerDatamodel.Partner, error)
	GetByEmail(ctx context.Context, email string) (*partnerDatamodel.Partner, error)
	List(ctx context.Context, activeOnly bool) ([]*partnerDatamodel.Partner, error)
	Update(ctx context.Context, p *partnerDatamodel.Partner) error
	SetActive(ctx context.Context, id int64, active bool) error
	Delete(ctx context.Context, id int64) error
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) CreatePartner(ctx context.Context, dto CreatePartnerDTO) (*Partner, error) {
	dto.Normalize()
	if appErr := dto.Validate(); appErr != nil {
		s.logger.Warn("partner validation failed", "error", appErr.GetDetailedMessage())
		return nil, appErr
	}

	data := ToDataModel(NewPartner(dto))
	if err := s.repo.Create(ctx, data); err != nil {
		s.logger.Error("failed to create partner", "error", err, "name", dto.Name)
		return nil, err
	}

	s.logger.Info("partner created", "partner_id", data.ID, "name", data.Name)
	return FromDataModel(data), nil
}

func (s *Service) GetPartner(ctx context.Context, id int64) (*Partner, error) {
	data, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromDataModel(data), nil
}

func (s *Service) FindByEmail(ctx context.Context, email string) (*Partner, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, internal.NewValidationFieldError("email", "email is required", internal.ErrCodeValidationFailed)
	}

	data, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return FromDataModel(data), nil
}

func (s *Service) ListPartners(ctx context.Context, activeOnly bool) ([]*Partner, error) {
	data, err := s.repo.List(ctx, activeOnly)
	if err != nil {
		s.logger.Error("failed to list partners", "error", err)
		return nil, err
	}
	return FromDataModelSlice(data), nil
}

func (s *Service) UpdatePartner(ctx context.Context, id int64, dto UpdatePartnerDTO) (*Partner, error) {
	dto.Normalize()
	if appErr := dto.Validate(); appErr != nil {
		return nil, appErr
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	current.Name = dto.Name
	current.Address = dto.Address
	current.Phone = dto.Phone
	current.Email = dto.Email
	if err := s.repo.Update(ctx, current); err != nil {
		s.logger.Error("failed to update partner", "error", err, "partner_id", id)
		return nil, err
	}

	s.logger.Info("partner updated", "partner_id", id)
	return FromDataModel(current), nil
}

func (s *Service) ActivatePartner(ctx context.Context, id int64) (*Partner, error) {
	return s.setActive(ctx, id, true)
}

func (s *Service) DeactivatePartner(ctx context.Context, id int64) (*Partner, error) {
	return s.setActive(ctx, id, false)
}

func (s *Service) setActive(ctx context.Context, id int64, active bool) (*Partner, error) {
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		s.logger.Error("failed to change partner status", "error", err, "partner_id", id, "active", active)
		return nil, err
	}

	s.logger.Info("partner status changed", "partner_id", id, "active", active)
	return s.GetPartner(ctx, id)
}

func (s *Service) DeletePartner(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete partner", "error", err, "partner_id", id)
		return err
	}
	s.logger.Info("partner deleted", "partner_id", id)
	return nil
}
