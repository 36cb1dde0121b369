package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/crosspost-app/composer-api/internal/models"
)

// SocialAccountRepository reads the account list maintained by the external
// accounts collaborator. This service never mutates it.
type SocialAccountRepository interface {
	GetByID(ctx context.Context, id int64) (*models.SocialAccount, error)
	ListInfo(ctx context.Context) ([]*models.SocialAccount, error)
	Exists(ctx context.Context, id int64) (bool, error)
}

type socialAccountRepository struct {
	db *sql.DB
}

func NewSocialAccountRepository(db *sql.DB) SocialAccountRepository {
	return &socialAccountRepository{db: db}
}

func (r *socialAccountRepository) GetByID(ctx context.Context, id int64) (*models.SocialAccount, error) {
	query := `SELECT id, platform, account_id, account_name, profile_picture_url, account_status, created_at, updated_at
		FROM social_accounts WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)

	var sa models.SocialAccount
	err := row.Scan(&sa.ID, &sa.Platform, &sa.AccountID, &sa.AccountName,
		&sa.ProfilePicture, &sa.AccountStatus, &sa.CreatedAt, &sa.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return &sa, nil
}

func (r *socialAccountRepository) ListInfo(ctx context.Context) ([]*models.SocialAccount, error) {
	query := `SELECT id, platform, account_name, profile_picture_url, account_status FROM social_accounts ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var accounts []*models.SocialAccount
	for rows.Next() {
		var sa models.SocialAccount
		err := rows.Scan(&sa.ID, &sa.Platform, &sa.AccountName, &sa.ProfilePicture, &sa.AccountStatus)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		accounts = append(accounts, &sa)
	}

	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return accounts, nil
}

func (r *socialAccountRepository) Exists(ctx context.Context, id int64) (bool, error) {
	query := "SELECT 1 FROM social_accounts WHERE id = $1"

	var result int
	err := r.db.QueryRowContext(ctx, query, id).Scan(&result)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		slog.Info(err.Error())
		return false, err
	}

	return result == 1, nil
}
