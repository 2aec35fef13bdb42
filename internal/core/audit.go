package core

import (
	"context"
	"fmt"

	"github.com/edvin/mailpanel/internal/model"
	"github.com/edvin/mailpanel/internal/platform"
)

type AuditService struct {
	db DB
}

func NewAuditService(db DB) *AuditService {
	return &AuditService{db: db}
}

// Record stores an audit entry. The request body must already be redacted.
func (s *AuditService) Record(ctx context.Context, entry *model.AuditLog) error {
	if entry.ID == "" {
		entry.ID = platform.NewSortableID()
	}
	var body any
	if len(entry.RequestBody) > 0 {
		body = []byte(entry.RequestBody)
	}
	_, err := s.db.Exec(ctx,
		`INSERT INTO audit_logs (id, api_key_id, method, path, resource_type, resource_id, status_code, request_body, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())`,
		entry.ID, entry.APIKeyID, entry.Method, entry.Path, entry.ResourceType, entry.ResourceID, entry.StatusCode, body,
	)
	if err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}

// List returns audit entries, newest first. resourceType filters when set.
func (s *AuditService) List(ctx context.Context, resourceType string, limit int, cursor string) ([]model.AuditLog, bool, error) {
	query := `SELECT id, api_key_id, method, path, resource_type, resource_id, status_code, request_body, created_at
	          FROM audit_logs WHERE 1=1`
	args := []any{}
	argIdx := 1

	if resourceType != "" {
		query += fmt.Sprintf(` AND resource_type = $%d`, argIdx)
		args = append(args, resourceType)
		argIdx++
	}
	if cursor != "" {
		query += fmt.Sprintf(` AND id < $%d`, argIdx)
		args = append(args, cursor)
		argIdx++
	}

	query += ` ORDER BY id DESC`
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit+1)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, false, fmt.Errorf("list audit logs: %w", err)
	}
	defer rows.Close()

	var logs []model.AuditLog
	for rows.Next() {
		var l model.AuditLog
		var body []byte
		if err := rows.Scan(&l.ID, &l.APIKeyID, &l.Method, &l.Path, &l.ResourceType, &l.ResourceID, &l.StatusCode, &body, &l.CreatedAt); err != nil {
			return nil, false, fmt.Errorf("scan audit log: %w", err)
		}
		l.RequestBody = body
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterate audit logs: %w", err)
	}

	hasMore := len(logs) > limit
	if hasMore {
		logs = logs[:limit]
	}
	return logs, hasMore, nil
}
