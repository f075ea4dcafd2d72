package user

import "time"

type User struct {
	ID           int64     `gorm:"primaryKey"`
	Name         string    `gorm:"column:name;not null"`
	Email        string    `gorm:"column:email;uniqueIndex;not null"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	Active       bool      `gorm:"column:active;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	Roles        []Role    `gorm:"many2many:user_roles;"`
}

func (User) TableName() string {
	return "users"
}

type Role struct {
	ID   int64  `gorm:"primaryKey"`
	Name string `gorm:"column:name;uniqueIndex;not null"`
}

func (Role) TableName() string {
	return "roles"
}

type UserRole struct {
	UserID int64 `gorm:"column:user_id;primaryKey"`
	RoleID int64 `gorm:"column:role_id;primaryKey"`
}

func (UserRole) TableName() string {
	return "user_roles"
}
