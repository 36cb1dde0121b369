package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/crosspost-app/composer-api/internal/models"
)

type PostingHistoryRepository interface {
	Create(ctx context.Context, ph *models.PostingHistory) (int64, error)
	ListBySessionID(ctx context.Context, sessionID string) ([]*models.PostingHistory, error)
}

type postingHistoryRepository struct {
	db *sql.DB
}

func NewPostingHistoryRepository(db *sql.DB) PostingHistoryRepository {
	return &postingHistoryRepository{db: db}
}

func (r *postingHistoryRepository) Create(ctx context.Context, ph *models.PostingHistory) (int64, error) {
	query := `
		INSERT INTO posting_history (session_id, account_count, scheduled, error_message)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query, ph.SessionID, ph.AccountCount, ph.Scheduled, ph.ErrorMessage).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *postingHistoryRepository) ListBySessionID(ctx context.Context, sessionID string) ([]*models.PostingHistory, error) {
	query := `SELECT id, session_id, account_count, scheduled, error_message, created_at
		FROM posting_history WHERE session_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var history []*models.PostingHistory
	for rows.Next() {
		var ph models.PostingHistory
		err := rows.Scan(&ph.ID, &ph.SessionID, &ph.AccountCount, &ph.Scheduled, &ph.ErrorMessage, &ph.CreatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		history = append(history, &ph)
	}

	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return history, nil
}
