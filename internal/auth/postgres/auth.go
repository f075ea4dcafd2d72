package postgres

import (
	"context"

	"github.com/codeup/novabook/internal/auth"
	"github.com/codeup/novabook/internal/core/dberr"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db: db,
	}
}

const accountColumns = `SELECT id, email, name, password_hash, active FROM users`

func (r *Repository) GetAccountByEmail(ctx context.Context, email string) (*auth.Account, error) {
	return r.account(ctx, accountColumns+` WHERE email = ?`, email)
}

func (r *Repository) GetAccountByID(ctx context.Context, id int64) (*auth.Account, error) {
	return r.account(ctx, accountColumns+` WHERE id = ?`, id)
}

func (r *Repository) account(ctx context.Context, query string, arg interface{}) (*auth.Account, error) {
	db := r.db.WithContext(ctx)

	var acct auth.Account
	row := db.Raw(query, arg).Row()
	if err := row.Scan(&acct.ID, &acct.Email, &acct.Name, &acct.PasswordHash, &acct.Active); err != nil {
		return nil, dberr.Translate(err, dberr.EntityUser, 0)
	}

	roleQuery := `SELECT r.name
	             FROM roles r
	             JOIN user_roles ur ON r.id = ur.role_id
	             WHERE ur.user_id = ?
	             ORDER BY r.name`

	rows, err := db.Raw(roleQuery, acct.ID).Rows()
	if err != nil {
		return nil, dberr.Translate(err, dberr.EntityRole, 0)
	}
	defer rows.Close()

	acct.Roles = []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, dberr.Translate(err, dberr.EntityRole, 0)
		}
		acct.Roles = append(acct.Roles, name)
	}
	if err := rows.Err(); err != nil {
		return nil, dberr.Translate(err, dberr.EntityRole, 0)
	}
	return &acct, nil
}
