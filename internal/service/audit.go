package service

import (
	"context"

	"github.com/Skotchmaster/adminpanel/internal/apperr"
	"github.com/Skotchmaster/adminpanel/internal/authn"
	"github.com/Skotchmaster/adminpanel/internal/models"
	"github.com/Skotchmaster/adminpanel/internal/repo"
	"github.com/Skotchmaster/adminpanel/internal/util"
)

type AuditLogStore interface {
	ListAuditLogs(ctx context.Context, f repo.AuditFilter, skip, limit int) ([]models.AuditLog, int64, error)
}

type AuditPage struct {
	CurrentPage int               `json:"current_page"`
	TotalCount  int64             `json:"total_count"`
	PerPage     int               `json:"per_page"`
	TotalPages  int               `json:"total_pages"`
	Data        []models.AuditLog `json:"data"`
}

type AuditService struct {
	Logs AuditLogStore
}

func (s *AuditService) List(ctx context.Context, keywords string, skip, limit int) (*AuditPage, error) {
	return s.list(ctx, repo.AuditFilter{Keywords: keywords}, skip, limit)
}

// Own lists the caller's own activity.
func (s *AuditService) Own(ctx context.Context, p *authn.Principal, keywords string, skip, limit int) (*AuditPage, error) {
	return s.list(ctx, repo.AuditFilter{UserID: p.Identity().ID, Keywords: keywords}, skip, limit)
}

func (s *AuditService) list(ctx context.Context, f repo.AuditFilter, skip, limit int) (*AuditPage, error) {
	skip, limit = util.Window(skip, limit)

	rows, total, err := s.Logs.ListAuditLogs(ctx, f, skip, limit)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if rows == nil {
		rows = []models.AuditLog{}
	}

	current, pages := util.Pages(total, skip, limit)
	return &AuditPage{
		CurrentPage: current,
		TotalCount:  total,
		PerPage:     limit,
		TotalPages:  pages,
		Data:        rows,
	}, nil
}
