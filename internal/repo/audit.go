package repo

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/Skotchmaster/adminpanel/internal/models"
)

type AuditFilter struct {
	// UserID restricts the listing to one actor when non-zero.
	UserID   uint
	Keywords string
}

func (f AuditFilter) apply(q *gorm.DB) *gorm.DB {
	if f.UserID != 0 {
		q = q.Where("user_id = ?", f.UserID)
	}
	if kw := strings.TrimSpace(f.Keywords); kw != "" {
		q = q.Where("LOWER(model_name) LIKE ?", "%"+strings.ToLower(kw)+"%")
	}
	return q
}

// ListAuditLogs returns one page of audit rows, newest first, and the total
// number of rows matching f.
func (r *GormRepo) ListAuditLogs(ctx context.Context, f AuditFilter, skip, limit int) ([]models.AuditLog, int64, error) {
	var total int64
	if err := f.apply(r.DB.WithContext(ctx).Model(&models.AuditLog{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.AuditLog
	err := f.apply(r.DB.WithContext(ctx)).
		Order("id DESC").
		Offset(skip).
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
