package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/example/workspace-agenda/internal/persistence"
)

// SyncStateRepository implements persistence.SyncStateRepository using SQLite.
type SyncStateRepository struct {
	db *DB
}

// NewSyncStateRepository creates a SQLite sync state repository.
func NewSyncStateRepository(db *DB) *SyncStateRepository {
	return &SyncStateRepository{db: db}
}

// GetMapping retrieves the event mapping for a local agenda entry.
func (r *SyncStateRepository) GetMapping(ctx context.Context, entryID string) (persistence.EventMapping, error) {
	query := `
		SELECT entry_id, remote_event_id, calendar_id, updated_at
		FROM event_mappings
		WHERE entry_id = ?
	`

	var mapping persistence.EventMapping
	var updatedAt string
	err := r.db.db.QueryRowContext(ctx, query, entryID).Scan(
		&mapping.EntryID,
		&mapping.RemoteEventID,
		&mapping.CalendarID,
		&updatedAt,
	)
	if err != nil {
		return persistence.EventMapping{}, mapError(err)
	}

	if mapping.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return persistence.EventMapping{}, fmt.Errorf("sqlite: parse updated_at: %w", err)
	}
	return mapping, nil
}

// PutMapping inserts or replaces the mapping for a local agenda entry.
func (r *SyncStateRepository) PutMapping(ctx context.Context, mapping persistence.EventMapping) error {
	query := `
		INSERT OR REPLACE INTO event_mappings (entry_id, remote_event_id, calendar_id, updated_at)
		VALUES (?, ?, ?, ?)
	`

	_, err := r.db.db.ExecContext(ctx, query,
		mapping.EntryID,
		mapping.RemoteEventID,
		mapping.CalendarID,
		mapping.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return mapError(err)
	}
	return nil
}

// DeleteMapping removes the mapping for a local agenda entry.
func (r *SyncStateRepository) DeleteMapping(ctx context.Context, entryID string) error {
	result, err := r.db.db.ExecContext(ctx, "DELETE FROM event_mappings WHERE entry_id = ?", entryID)
	if err != nil {
		return mapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// ListMappings returns all stored event mappings.
func (r *SyncStateRepository) ListMappings(ctx context.Context) ([]persistence.EventMapping, error) {
	query := `
		SELECT entry_id, remote_event_id, calendar_id, updated_at
		FROM event_mappings
		ORDER BY entry_id ASC
	`

	rows, err := r.db.db.QueryContext(ctx, query)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	mappings := make([]persistence.EventMapping, 0)
	for rows.Next() {
		var mapping persistence.EventMapping
		var updatedAt string
		if err := rows.Scan(
			&mapping.EntryID,
			&mapping.RemoteEventID,
			&mapping.CalendarID,
			&updatedAt,
		); err != nil {
			return nil, mapError(err)
		}
		if mapping.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: parse updated_at: %w", err)
		}
		mappings = append(mappings, mapping)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return mappings, nil
}

// GetToken retrieves the persisted oauth2 token for an account.
func (r *SyncStateRepository) GetToken(ctx context.Context, account string) (persistence.OAuthToken, error) {
	query := `SELECT account, token, updated_at FROM oauth_tokens WHERE account = ?`

	var token persistence.OAuthToken
	var updatedAt string
	err := r.db.db.QueryRowContext(ctx, query, account).Scan(
		&token.Account,
		&token.TokenJSON,
		&updatedAt,
	)
	if err != nil {
		return persistence.OAuthToken{}, mapError(err)
	}

	if token.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return persistence.OAuthToken{}, fmt.Errorf("sqlite: parse updated_at: %w", err)
	}
	return token, nil
}

// PutToken inserts or replaces the token for an account.
func (r *SyncStateRepository) PutToken(ctx context.Context, token persistence.OAuthToken) error {
	query := `
		INSERT OR REPLACE INTO oauth_tokens (account, token, updated_at)
		VALUES (?, ?, ?)
	`

	_, err := r.db.db.ExecContext(ctx, query,
		token.Account,
		token.TokenJSON,
		token.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return mapError(err)
	}
	return nil
}

// DeleteToken removes the token for an account.
func (r *SyncStateRepository) DeleteToken(ctx context.Context, account string) error {
	result, err := r.db.db.ExecContext(ctx, "DELETE FROM oauth_tokens WHERE account = ?", account)
	if err != nil {
		return mapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// PutPendingAuth records an in-flight authorization attempt.
func (r *SyncStateRepository) PutPendingAuth(ctx context.Context, pending persistence.PendingAuth) error {
	query := `
		INSERT OR REPLACE INTO pending_auth (state, created_at, expires_at)
		VALUES (?, ?, ?)
	`

	_, err := r.db.db.ExecContext(ctx, query,
		pending.State,
		pending.CreatedAt.UTC().Format(time.RFC3339),
		pending.ExpiresAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return mapError(err)
	}
	return nil
}

// TakePendingAuth consumes a pending authorization attempt. Expired or
// unknown states yield ErrNotFound; the row is removed either way.
func (r *SyncStateRepository) TakePendingAuth(ctx context.Context, state string, now time.Time) (persistence.PendingAuth, error) {
	query := `SELECT state, created_at, expires_at FROM pending_auth WHERE state = ?`

	var pending persistence.PendingAuth
	var createdAt, expiresAt string
	err := r.db.db.QueryRowContext(ctx, query, state).Scan(&pending.State, &createdAt, &expiresAt)
	if err != nil {
		return persistence.PendingAuth{}, mapError(err)
	}

	if _, err := r.db.db.ExecContext(ctx, "DELETE FROM pending_auth WHERE state = ?", state); err != nil {
		return persistence.PendingAuth{}, mapError(err)
	}

	if pending.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return persistence.PendingAuth{}, fmt.Errorf("sqlite: parse created_at: %w", err)
	}
	if pending.ExpiresAt, err = time.Parse(time.RFC3339, expiresAt); err != nil {
		return persistence.PendingAuth{}, fmt.Errorf("sqlite: parse expires_at: %w", err)
	}
	if now.After(pending.ExpiresAt) {
		return persistence.PendingAuth{}, persistence.ErrNotFound
	}
	return pending, nil
}

// PurgeExpiredPendingAuth removes expired authorization attempts.
func (r *SyncStateRepository) PurgeExpiredPendingAuth(ctx context.Context, now time.Time) error {
	_, err := r.db.db.ExecContext(ctx,
		"DELETE FROM pending_auth WHERE expires_at < ?",
		now.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return mapError(err)
	}
	return nil
}
