package user

import (
	"time"

	userDatamodel "github.com/codeup/novabook/internal/core/datamodel/user"
)

const (
	RoleAdministrator = "Administrator"
	RoleLibrarian     = "Librarian"
)

// BuiltinRoles are seeded by the migrations and cannot be renamed through the API.
var BuiltinRoles = []string{RoleAdministrator, RoleLibrarian}

// User is an operator of the library (administrator or librarian), not a
// borrowing partner.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Active       bool      `json:"active"`
	Roles        []string  `json:"roles"`
	CreatedAt    time.Time `json:"created_at"`
}

type Role struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func (u *User) IsAdmin() bool {
	return u.HasRole(RoleAdministrator)
}

func IsBuiltinRole(name string) bool {
	for _, r := range BuiltinRoles {
		if r == name {
			return true
		}
	}
	return false
}

func ToDataModel(u *User) *userDatamodel.User {
	return &userDatamodel.User{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Active:       u.Active,
		CreatedAt:    u.CreatedAt,
	}
}

func FromDataModel(u *userDatamodel.User) *User {
	roles := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		roles = append(roles, r.Name)
	}
	return &User{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Active:       u.Active,
		Roles:        roles,
		CreatedAt:    u.CreatedAt,
	}
}

func FromDataModelSlice(users []*userDatamodel.User) []*User {
	result := make([]*User, len(users))
	for i, u := range users {
		result[i] = FromDataModel(u)
	}
	return result
}

func RoleFromDataModel(r *userDatamodel.Role) *Role {
	return &Role{ID: r.ID, Name: r.Name}
}
