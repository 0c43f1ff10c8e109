package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/maheshrc27/socialpro/internal/models"
)

var ErrAccountNotFound = errors.New("social account not found")

type SocialAccountRepository interface {
	// Upsert writes the credential for (user, platform), replacing any
	// existing row for the pair.
	Upsert(ctx context.Context, tx *sql.Tx, sa *models.SocialAccount) (int64, error)
	GetByPlatform(ctx context.Context, userID int64, platform models.Provider) (*models.SocialAccount, error)
	ListByUserID(ctx context.Context, userID int64) ([]*models.SocialAccount, error)
	SetSelectedPage(ctx context.Context, userID int64, platform models.Provider, pageID string) error
	Remove(ctx context.Context, userID int64, platform models.Provider) error
}

type socialAccountRepository struct {
	db *sql.DB
}

func NewSocialAccountRepository(db *sql.DB) SocialAccountRepository {
	return &socialAccountRepository{db: db}
}

const socialAccountColumns = `id, user_id, platform, account_id, account_name, account_username,
	profile_picture_url, email, access_token, refresh_token, token_expires_at,
	pages, selected_page_id, created_at, updated_at`

func (r *socialAccountRepository) Upsert(ctx context.Context, tx *sql.Tx, sa *models.SocialAccount) (int64, error) {
	pages, err := json.Marshal(sa.Pages)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	query := `
		INSERT INTO social_accounts(
			user_id,
			platform,
			account_id,
			account_name,
			account_username,
			profile_picture_url,
			email,
			access_token,
			refresh_token,
			token_expires_at,
			pages,
			selected_page_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (user_id, platform) DO UPDATE SET
			account_id = EXCLUDED.account_id,
			account_name = EXCLUDED.account_name,
			account_username = EXCLUDED.account_username,
			profile_picture_url = EXCLUDED.profile_picture_url,
			email = EXCLUDED.email,
			access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			token_expires_at = EXCLUDED.token_expires_at,
			pages = EXCLUDED.pages,
			selected_page_id = EXCLUDED.selected_page_id,
			updated_at = CURRENT_TIMESTAMP
		RETURNING id
	`
	args := []interface{}{
		sa.UserID,
		sa.Platform,
		sa.AccountID,
		sa.AccountName,
		sa.AccountUsername,
		sa.ProfilePicture,
		sa.Email,
		sa.AccessToken,
		sa.RefreshToken,
		sa.TokenExpiresAt,
		pages,
		sa.SelectedPageID,
	}

	var id int64
	if tx != nil {
		err = tx.QueryRowContext(ctx, query, args...).Scan(&id)
	} else {
		err = r.db.QueryRowContext(ctx, query, args...).Scan(&id)
	}
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSocialAccount(row rowScanner) (*models.SocialAccount, error) {
	var sa models.SocialAccount
	var pages []byte
	err := row.Scan(&sa.ID, &sa.UserID, &sa.Platform, &sa.AccountID, &sa.AccountName,
		&sa.AccountUsername, &sa.ProfilePicture, &sa.Email, &sa.AccessToken, &sa.RefreshToken,
		&sa.TokenExpiresAt, &pages, &sa.SelectedPageID, &sa.CreatedAt, &sa.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(pages) > 0 {
		if err := json.Unmarshal(pages, &sa.Pages); err != nil {
			return nil, err
		}
	}
	return &sa, nil
}

func (r *socialAccountRepository) GetByPlatform(ctx context.Context, userID int64, platform models.Provider) (*models.SocialAccount, error) {
	query := `SELECT ` + socialAccountColumns + ` FROM social_accounts WHERE user_id = $1 AND platform = $2`

	sa, err := scanSocialAccount(r.db.QueryRowContext(ctx, query, userID, platform))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return sa, nil
}

func (r *socialAccountRepository) ListByUserID(ctx context.Context, userID int64) ([]*models.SocialAccount, error) {
	query := `SELECT ` + socialAccountColumns + ` FROM social_accounts WHERE user_id = $1 ORDER BY platform`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var accounts []*models.SocialAccount
	for rows.Next() {
		sa, err := scanSocialAccount(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		accounts = append(accounts, sa)
	}

	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return accounts, nil
}

func (r *socialAccountRepository) SetSelectedPage(ctx context.Context, userID int64, platform models.Provider, pageID string) error {
	query := `
		UPDATE social_accounts
		SET selected_page_id = $3,
			updated_at = CURRENT_TIMESTAMP
		WHERE user_id = $1 AND platform = $2
	`
	result, err := r.db.ExecContext(ctx, query, userID, platform, pageID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	if affected != 1 {
		return ErrAccountNotFound
	}
	return nil
}

func (r *socialAccountRepository) Remove(ctx context.Context, userID int64, platform models.Provider) error {
	query := `DELETE FROM social_accounts WHERE user_id = $1 AND platform = $2`
	_, err := r.db.ExecContext(ctx, query, userID, platform)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
