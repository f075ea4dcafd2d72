package user

import (
	"strings"

	"github.com/codeup/novabook/internal"
	"github.com/codeup/novabook/internal/core/common/validation"
)

type CreateUserDTO struct {
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Password string   `json:"password"`
	Roles    []string `json:"roles"`
}

type UpdateUserDTO struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Active *bool  `json:"active,omitempty"`
}

type ChangePasswordDTO struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type AssignRoleDTO struct {
	Role string `json:"role"`
}

type UsersResponse struct {
	Users []*User `json:"users"`
	Total int     `json:"total"`
}

type RolesResponse struct {
	Roles []*Role `json:"roles"`
}

func (dto *CreateUserDTO) Normalize() {
	dto.Name = strings.TrimSpace(dto.Name)
	dto.Email = strings.ToLower(strings.TrimSpace(dto.Email))
	roles := make([]string, 0, len(dto.Roles))
	seen := make(map[string]bool, len(dto.Roles))
	for _, r := range dto.Roles {
		r = strings.TrimSpace(r)
		if r == "" || seen[r] {
			continue
		}
		seen[r] = true
		roles = append(roles, r)
	}
	if len(roles) == 0 {
		roles = append(roles, RoleLibrarian)
	}
	dto.Roles = roles
}

func (dto CreateUserDTO) Validate(minPasswordLength int) *internal.AppError {
	v := validation.NewValidator()
	v.Field("name", dto.Name).Required().MaxLength(255)
	v.Field("email", dto.Email).Required().Email().MaxLength(255)
	v.Field("password", dto.Password).Required().Custom(passwordLength("password", minPasswordLength))
	return v.Validate()
}

func (dto *UpdateUserDTO) Normalize() {
	dto.Name = strings.TrimSpace(dto.Name)
	dto.Email = strings.ToLower(strings.TrimSpace(dto.Email))
}

func (dto UpdateUserDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("name", dto.Name).Required().MaxLength(255)
	v.Field("email", dto.Email).Required().Email().MaxLength(255)
	return v.Validate()
}

func (dto ChangePasswordDTO) Validate(minPasswordLength int) *internal.AppError {
	v := validation.NewValidator()
	v.Field("current_password", dto.CurrentPassword).Required()
	v.Field("new_password", dto.NewPassword).Required().Custom(passwordLength("new_password", minPasswordLength))
	return v.Validate()
}

func (dto *AssignRoleDTO) Normalize() {
	dto.Role = strings.TrimSpace(dto.Role)
}

func (dto AssignRoleDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("role", dto.Role).Required()
	return v.Validate()
}

func passwordLength(field string, min int) func(interface{}) *internal.AppError {
	return func(value interface{}) *internal.AppError {
		s, ok := value.(string)
		if !ok || s == "" || len(s) >= min {
			return nil
		}
		return internal.NewValidationFieldError(field, field+" is too short", internal.ErrCodePasswordTooShort)
	}
}
