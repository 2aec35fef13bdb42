package core

import (
	"context"
	"fmt"

	"github.com/edvin/mailpanel/internal/model"
)

type DashboardService struct {
	db DB
}

func NewDashboardService(db DB) *DashboardService {
	return &DashboardService{db: db}
}

// Stats counts domains, mailboxes and aliases in one round trip.
func (s *DashboardService) Stats(ctx context.Context) (*model.DashboardStats, error) {
	stats := &model.DashboardStats{}
	err := s.db.QueryRow(ctx, `
		SELECT
			(SELECT count(*) FROM domains),
			(SELECT count(*) FROM mailboxes),
			(SELECT count(*) FROM aliases)`,
	).Scan(&stats.Domains, &stats.Mailboxes, &stats.Aliases)
	if err != nil {
		return nil, fmt.Errorf("dashboard counts: %w", err)
	}
	return stats, nil
}
