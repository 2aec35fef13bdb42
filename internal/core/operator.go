package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/edvin/mailpanel/internal/crypto"
	"github.com/edvin/mailpanel/internal/model"
	"github.com/edvin/mailpanel/internal/platform"
)

// OperatorService manages panel operators.
type OperatorService struct {
	db DB
}

func NewOperatorService(db DB) *OperatorService {
	return &OperatorService{db: db}
}

// Create inserts the operator and provisions its first API key in the same
// transaction. The raw key is returned once and never stored.
func (s *OperatorService) Create(ctx context.Context, name string) (*model.Operator, *model.APIKey, string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil, "", validationf("operator name is required")
	}
	rawKey, err := crypto.GenerateAPIKey()
	if err != nil {
		return nil, nil, "", err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, nil, "", fmt.Errorf("begin operator transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	op := &model.Operator{ID: platform.NewID(), Name: name}
	err = tx.QueryRow(ctx,
		`INSERT INTO operators (id, name, created_at) VALUES ($1, $2, now()) RETURNING created_at`,
		op.ID, op.Name,
	).Scan(&op.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, nil, "", validationf("operator %s already exists", name)
		}
		return nil, nil, "", fmt.Errorf("insert operator: %w", err)
	}

	key, err := insertAPIKey(ctx, tx, op.ID, "default", rawKey)
	if err != nil {
		return nil, nil, "", err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, "", fmt.Errorf("commit operator: %w", err)
	}
	return op, key, rawKey, nil
}

func (s *OperatorService) GetByID(ctx context.Context, id string) (*model.Operator, error) {
	var op model.Operator
	err := s.db.QueryRow(ctx, `SELECT id, name, created_at FROM operators WHERE id = $1`, id).
		Scan(&op.ID, &op.Name, &op.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get operator %s: %w", id, notFound(err))
	}
	return &op, nil
}

func (s *OperatorService) List(ctx context.Context) ([]model.Operator, error) {
	rows, err := s.db.Query(ctx, `SELECT id, name, created_at FROM operators ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list operators: %w", err)
	}
	defer rows.Close()

	var ops []model.Operator
	for rows.Next() {
		var op model.Operator
		if err := rows.Scan(&op.ID, &op.Name, &op.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan operator: %w", err)
		}
		ops = append(ops, op)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate operators: %w", err)
	}
	return ops, nil
}
