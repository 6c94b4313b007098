package audit

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/Skotchmaster/adminpanel/internal/models"
)

type DBSink struct {
	DB *gorm.DB
}

func (s *DBSink) Write(ctx context.Context, a Activity) error {
	row := models.AuditLog{
		UserID:     a.ActorID,
		Action:     string(a.Action),
		RecordID:   a.RecordID,
		ModelName:  a.ModelName,
		IPAddress:  a.IPAddress,
		Notes:      a.Notes,
		ActionedAt: a.At,
	}
	if err := s.DB.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("audit db: %w", err)
	}
	return nil
}
