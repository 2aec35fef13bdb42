package core

import (
	"context"
	"fmt"

	"github.com/edvin/mailpanel/internal/crypto"
	"github.com/edvin/mailpanel/internal/model"
	"github.com/edvin/mailpanel/internal/platform"
)

// APIKeyService manages the API keys of operators.
type APIKeyService struct {
	db DB
}

func NewAPIKeyService(db DB) *APIKeyService {
	return &APIKeyService{db: db}
}

// Create generates a key for the operator and returns it with the raw key
// string. The raw key is shown to the caller exactly once.
func (s *APIKeyService) Create(ctx context.Context, operatorID, name string) (*model.APIKey, string, error) {
	rawKey, err := crypto.GenerateAPIKey()
	if err != nil {
		return nil, "", err
	}
	key, err := insertAPIKey(ctx, s.db, operatorID, name, rawKey)
	if err != nil {
		return nil, "", err
	}
	return key, rawKey, nil
}

// insertAPIKey stores the hash of rawKey. q is the pool or an open
// transaction.
func insertAPIKey(ctx context.Context, q querier, operatorID, name, rawKey string) (*model.APIKey, error) {
	key := &model.APIKey{
		ID:         platform.NewID(),
		OperatorID: operatorID,
		Name:       name,
		KeyHash:    crypto.HashAPIKey(rawKey),
		KeyPrefix:  crypto.DisplayPrefix(rawKey),
	}
	err := q.QueryRow(ctx,
		`INSERT INTO api_keys (id, operator_id, name, key_hash, key_prefix, created_at)
		 VALUES ($1, $2, $3, $4, $5, now()) RETURNING created_at`,
		key.ID, key.OperatorID, key.Name, key.KeyHash, key.KeyPrefix,
	).Scan(&key.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert api key: %w", err)
	}
	return key, nil
}

func (s *APIKeyService) GetByID(ctx context.Context, id string) (*model.APIKey, error) {
	var k model.APIKey
	err := s.db.QueryRow(ctx,
		`SELECT id, operator_id, name, key_prefix, created_at, revoked_at FROM api_keys WHERE id = $1`, id,
	).Scan(&k.ID, &k.OperatorID, &k.Name, &k.KeyPrefix, &k.CreatedAt, &k.RevokedAt)
	if err != nil {
		return nil, fmt.Errorf("get api key %s: %w", id, notFound(err))
	}
	return &k, nil
}

// ListByOperator lists the keys of one operator, newest first.
func (s *APIKeyService) ListByOperator(ctx context.Context, operatorID string, limit int, cursor string) ([]model.APIKey, bool, error) {
	query := `SELECT id, operator_id, name, key_prefix, created_at, revoked_at FROM api_keys WHERE operator_id = $1`
	args := []any{operatorID}
	argIdx := 2

	if cursor != "" {
		query += fmt.Sprintf(` AND id > $%d`, argIdx)
		args = append(args, cursor)
		argIdx++
	}

	query += ` ORDER BY id`
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit+1)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, false, fmt.Errorf("list api keys: %w", err)
	}
	defer rows.Close()

	var keys []model.APIKey
	for rows.Next() {
		var k model.APIKey
		if err := rows.Scan(&k.ID, &k.OperatorID, &k.Name, &k.KeyPrefix, &k.CreatedAt, &k.RevokedAt); err != nil {
			return nil, false, fmt.Errorf("scan api key: %w", err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterate api keys: %w", err)
	}

	hasMore := len(keys) > limit
	if hasMore {
		keys = keys[:limit]
	}
	return keys, hasMore, nil
}

// Revoke soft-deletes an API key by setting revoked_at.
func (s *APIKeyService) Revoke(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx,
		"UPDATE api_keys SET revoked_at = now() WHERE id = $1 AND revoked_at IS NULL", id,
	)
	if err != nil {
		return fmt.Errorf("revoke api key %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("revoke api key %s: %w", id, ErrNotFound)
	}
	return nil
}

// Authenticate resolves a raw key to the key record. Revoked and unknown
// keys return ErrNotFound.
func (s *APIKeyService) Authenticate(ctx context.Context, rawKey string) (*model.APIKey, error) {
	var k model.APIKey
	err := s.db.QueryRow(ctx,
		`SELECT id, operator_id, name, key_prefix, created_at, revoked_at FROM api_keys
		 WHERE key_hash = $1 AND revoked_at IS NULL`, crypto.HashAPIKey(rawKey),
	).Scan(&k.ID, &k.OperatorID, &k.Name, &k.KeyPrefix, &k.CreatedAt, &k.RevokedAt)
	if err != nil {
		return nil, fmt.Errorf("authenticate api key: %w", notFound(err))
	}
	return &k, nil
}
