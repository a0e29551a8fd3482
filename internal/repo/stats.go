// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the aggregate queries behind the
// statistics endpoint. Each function is context-aware and safe to call from
// services or handlers.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/registro-tarjetas/go-registro-backend/internal/domain"
)

// RegistrationCounts bundles the aggregate figures for the statistics
// endpoint: the all-time total plus the today and last-7-days windows.
type RegistrationCounts struct {
	Total int64
	Today int64
	Week  int64
}

// RegistrationStats computes registration counts relative to now.
//
// "Today" is the local calendar day containing now (midnight to midnight),
// matching how the reception desk reads the dashboard; "week" is the
// trailing 7-day window.
func RegistrationStats(ctx context.Context, db *gorm.DB, now time.Time) (RegistrationCounts, error) {
	var c RegistrationCounts

	q := db.WithContext(ctx).Model(&domain.CredentialRegistration{})
	if err := q.Count(&c.Total).Error; err != nil {
		return RegistrationCounts{}, err
	}

	// Window bounds are built in now's zone and bound as UTC instants,
	// matching the stored timestamps.
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	endOfDay := startOfDay.Add(24 * time.Hour)
	err := db.WithContext(ctx).
		Model(&domain.CredentialRegistration{}).
		Where("registered_at >= ? AND registered_at < ?", startOfDay.UTC(), endOfDay.UTC()).
		Count(&c.Today).Error
	if err != nil {
		return RegistrationCounts{}, err
	}

	weekAgo := now.Add(-7 * 24 * time.Hour)
	err = db.WithContext(ctx).
		Model(&domain.CredentialRegistration{}).
		Where("registered_at >= ?", weekAgo.UTC()).
		Count(&c.Week).Error
	if err != nil {
		return RegistrationCounts{}, err
	}

	return c, nil
}
