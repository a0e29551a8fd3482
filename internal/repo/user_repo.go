// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides read-only queries against the
// pre-loaded authorization directory (usuarios). The service never writes
// this table; rows arrive through external bulk imports.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/registro-tarjetas/go-registro-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// FindAuthorizedUser fetches the authorization row for an upper-cased CURP,
// or ErrNotFound when the CURP is not in the directory.
func FindAuthorizedUser(ctx context.Context, db *gorm.DB, curp string) (*domain.AuthorizedUser, error) {
	var u domain.AuthorizedUser
	err := db.WithContext(ctx).
		Where("curp = ?", curp).
		First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CountAuthorizedUsers returns the total number of rows in the
// authorization directory. Used by the statistics endpoint.
func CountAuthorizedUsers(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.AuthorizedUser{}).
		Count(&total).Error
	return total, err
}
