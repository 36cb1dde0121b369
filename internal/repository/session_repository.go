package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/crosspost-app/composer-api/internal/models"
)

// SessionRepository persists serialized composition sessions. The payload is
// opaque here; (de)serialization happens at the composer boundary.
type SessionRepository interface {
	Get(ctx context.Context, sessionID string) ([]byte, error)
	Save(ctx context.Context, sessionID string, payload []byte) error
	Remove(ctx context.Context, sessionID string) error
	ListOlderThan(ctx context.Context, cutoff time.Time) ([]string, error)
}

type sessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *sql.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Get(ctx context.Context, sessionID string) ([]byte, error) {
	query := `SELECT session_id, payload, created_at, updated_at FROM composition_sessions WHERE session_id = $1`

	var record models.CompositionSessionRecord
	err := r.db.QueryRowContext(ctx, query, sessionID).Scan(
		&record.SessionID,
		&record.Payload,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return record.Payload, nil
}

func (r *sessionRepository) Save(ctx context.Context, sessionID string, payload []byte) error {
	query := `
		INSERT INTO composition_sessions (session_id, payload)
		VALUES ($1, $2)
		ON CONFLICT (session_id)
		DO UPDATE SET payload = EXCLUDED.payload, updated_at = CURRENT_TIMESTAMP
	`
	_, err := r.db.ExecContext(ctx, query, sessionID, payload)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *sessionRepository) Remove(ctx context.Context, sessionID string) error {
	query := `DELETE FROM composition_sessions WHERE session_id = $1`
	_, err := r.db.ExecContext(ctx, query, sessionID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *sessionRepository) ListOlderThan(ctx context.Context, cutoff time.Time) ([]string, error) {
	query := `SELECT session_id FROM composition_sessions WHERE updated_at < $1`
	rows, err := r.db.QueryContext(ctx, query, cutoff)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return ids, nil
}
