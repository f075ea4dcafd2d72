package auth

import (
	"context"

	"github.com/codeup/novabook/internal/user"
)

// RoleAuthorizer decides whether a set of role names grants access.
type RoleAuthorizer interface {
	HasAnyRole(ctx context.Context, userRoles []string, required ...string) (bool, error)
	IsAdminCtx(ctx context.Context, userRoles []string) (bool, error)
	IsStaffCtx(ctx context.Context, userRoles []string) (bool, error)
}

type DefaultRoleChecker struct{}

func NewRoleChecker() *DefaultRoleChecker {
	return &DefaultRoleChecker{}
}

func (c *DefaultRoleChecker) HasAnyRole(ctx context.Context, userRoles []string, required ...string) (bool, error) {
	return c.hasAny(userRoles, required), nil
}

func (c *DefaultRoleChecker) IsAdminCtx(ctx context.Context, userRoles []string) (bool, error) {
	return c.IsAdmin(userRoles), nil
}

func (c *DefaultRoleChecker) IsStaffCtx(ctx context.Context, userRoles []string) (bool, error) {
	return c.IsStaff(userRoles), nil
}

// IsAdmin grants user management and catalog import.
func (c *DefaultRoleChecker) IsAdmin(userRoles []string) bool {
	return c.hasAny(userRoles, []string{user.RoleAdministrator})
}

// IsStaff grants day-to-day lending work: books, partners, loans and reports.
func (c *DefaultRoleChecker) IsStaff(userRoles []string) bool {
	return c.hasAny(userRoles, []string{user.RoleAdministrator, user.RoleLibrarian})
}

func (c *DefaultRoleChecker) hasAny(userRoles, required []string) bool {
	for _, have := range userRoles {
		for _, want := range required {
			if have == want {
				return true
			}
		}
	}
	return false
}
