package partner

import (
	"strings"

	"github.com/codeup/novabook/internal"
	"github.com/codeup/novabook/internal/core/common/validation"
)

type CreatePartnerDTO struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Active  *bool  `json:"active,omitempty"`
}

type UpdatePartnerDTO struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
}

type PartnersResponse struct {
	Partners []*Partner `json:"partners"`
	Total    int        `json:"total"`
}

func (dto *CreatePartnerDTO) Normalize() {
	dto.Name = strings.TrimSpace(dto.Name)
	dto.Address = strings.TrimSpace(dto.Address)
	dto.Phone = strings.TrimSpace(dto.Phone)
	dto.Email = strings.ToLower(strings.TrimSpace(dto.Email))
}

func (dto CreatePartnerDTO) Validate() *internal.AppError {
	return validateContact(dto.Name, dto.Email, dto.Phone)
}

func (dto *UpdatePartnerDTO) Normalize() {
	dto.Name = strings.TrimSpace(dto.Name)
	dto.Address = strings.TrimSpace(dto.Address)
	dto.Phone = strings.TrimSpace(dto.Phone)
	dto.Email = strings.ToLower(strings.TrimSpace(dto.Email))
}

func (dto UpdatePartnerDTO) Validate() *internal.AppError {
	return validateContact(dto.Name, dto.Email, dto.Phone)
}

func validateContact(name, email, phone string) *internal.AppError {
	v := validation.NewValidator()
	v.Field("name", name).Required().MaxLength(255)
	v.Field("email", email).Email().MaxLength(255)
	v.Field("phone", phone).MaxLength(50)
	return v.Validate()
}
