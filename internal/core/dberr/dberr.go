// Package dberr classifies store failures into the application error taxonomy.
package dberr

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/codeup/novabook/internal"
)

const (
	EntityBook    = "book"
	EntityPartner = "partner"
	EntityLoan    = "loan"
	EntityUser    = "user"
	EntityRole    = "role"
)

var notFoundByEntity = map[string]*internal.AppError{
	EntityBook:    internal.ErrBookNotFound,
	EntityPartner: internal.ErrPartnerNotFound,
	EntityLoan:    internal.ErrLoanNotFound,
	EntityUser:    internal.ErrUserNotFound,
	EntityRole:    internal.ErrRoleNotFound,
}

// NotFound returns the not-found error for entity scoped to id.
func NotFound(entity string, id int64) *internal.AppError {
	base, ok := notFoundByEntity[entity]
	if !ok {
		base = internal.NewNotFoundError(fmt.Sprintf("%s not found", entity), internal.ErrCodeRecordNotFound)
	}
	return base.ForEntity(entity, id)
}

// Translate maps err into an *internal.AppError. Errors that already are
// AppErrors pass through unchanged; nil stays nil.
func Translate(err error, entity string, id int64) error {
	if err == nil {
		return nil
	}
	if _, ok := internal.IsAppError(err); ok {
		return err
	}

	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return internal.NewCanceledError(err).ForEntity(entity, id)
	case errors.Is(err, gorm.ErrRecordNotFound), errors.Is(err, sql.ErrNoRows):
		return NotFound(entity, id)
	case errors.Is(err, gorm.ErrDuplicatedKey), errors.Is(err, gorm.ErrForeignKeyViolated):
		return internal.NewIntegrityError(fmt.Sprintf("%s violates a store constraint", entity), err).ForEntity(entity, id)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgerrcode.IsIntegrityConstraintViolation(pgErr.Code):
			return internal.NewIntegrityError(fmt.Sprintf("%s violates constraint %s", entity, pgErr.ConstraintName), err).ForEntity(entity, id)
		case pgerrcode.IsConnectionException(pgErr.Code), pgErr.Code == pgerrcode.AdminShutdown, pgErr.Code == pgerrcode.CannotConnectNow:
			return internal.NewConnectionError("database connection failed", err)
		}
	}

	if IsConnectionError(err) {
		return internal.NewConnectionError("database connection failed", err)
	}

	return internal.NewInternalError(fmt.Sprintf("%s store operation failed", entity), err).ForEntity(entity, id)
}

// IsConnectionError reports driver level failures that mean the database was unreachable.
func IsConnectionError(err error) bool {
	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// NoRowsAffected reports a write that matched no row inside a transaction
// step that must touch exactly one.
func NoRowsAffected(entity string, id int64) *internal.AppError {
	return &internal.AppError{
		Type:       internal.ErrorTypeInternal,
		Code:       internal.ErrCodeNoRowsAffected,
		Message:    fmt.Sprintf("%s write affected no rows", entity),
		Entity:     entity,
		EntityID:   id,
		StatusCode: http.StatusInternalServerError,
	}
}
