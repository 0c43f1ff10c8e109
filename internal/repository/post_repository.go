package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/lib/pq"
	"github.com/maheshrc27/socialpro/internal/models"
)

type PostRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Post, error)
	Create(ctx context.Context, tx *sql.Tx, post *models.Post) (int64, error)
	GetByUserID(ctx context.Context, userID int64) ([]*models.Post, error)
	CheckByUserID(ctx context.Context, postID, userID int64) (bool, error)
	// ClaimScheduled moves a scheduled post to publishing. It reports false
	// when another worker got there first or the post is gone.
	ClaimScheduled(ctx context.Context, id int64) (bool, error)
	CompletePublish(ctx context.Context, id int64, outcomes map[models.Provider]models.PublishOutcome) error
	ListDue(ctx context.Context, before time.Time) ([]*models.Post, error)
	// ListStalePublishing returns claimed posts last touched before before.
	ListStalePublishing(ctx context.Context, before time.Time) ([]*models.Post, error)
	// AbandonPublishing closes a post still in publishing with outcomes. It
	// reports false when a worker finished it first.
	AbandonPublishing(ctx context.Context, id int64, outcomes map[models.Provider]models.PublishOutcome) (bool, error)
	Remove(ctx context.Context, id int64) error
}

type postRepository struct {
	db *sql.DB
}

func NewPostRepository(db *sql.DB) PostRepository {
	return &postRepository{db: db}
}

const postColumns = `id, user_id, content, images, link, location, hashtags, platforms,
	platform_specific_content, scheduled_for, status, platform_responses, created_at, updated_at`

func (r *postRepository) Create(ctx context.Context, tx *sql.Tx, post *models.Post) (int64, error) {
	platforms, err := json.Marshal(post.Platforms)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	overrides, err := json.Marshal(post.PlatformSpecificContent)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	responses, err := json.Marshal(post.PlatformResponses)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	// pq sends a nil slice as NULL.
	if post.Images == nil {
		post.Images = []string{}
	}
	if post.Hashtags == nil {
		post.Hashtags = []string{}
	}

	query := `
		INSERT INTO posts (
			user_id,
			content,
			images,
			link,
			location,
			hashtags,
			platforms,
			platform_specific_content,
			scheduled_for,
			status,
			platform_responses
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at
	`
	args := []interface{}{
		post.UserID,
		post.Content,
		pq.Array(post.Images),
		post.Link,
		post.Location,
		pq.Array(post.Hashtags),
		platforms,
		overrides,
		post.ScheduledFor,
		post.Status,
		responses,
	}

	var id int64
	var createdAt time.Time
	if tx != nil {
		err = tx.QueryRowContext(ctx, query, args...).Scan(&id, &createdAt)
	} else {
		err = r.db.QueryRowContext(ctx, query, args...).Scan(&id, &createdAt)
	}
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	post.ID = id
	post.CreatedAt = createdAt
	post.UpdatedAt = createdAt
	return id, nil
}

func scanPost(row rowScanner) (*models.Post, error) {
	var post models.Post
	var platforms, overrides, responses []byte
	err := row.Scan(&post.ID, &post.UserID, &post.Content, pq.Array(&post.Images), &post.Link,
		&post.Location, pq.Array(&post.Hashtags), &platforms, &overrides, &post.ScheduledFor,
		&post.Status, &responses, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		return nil, err
	}

	post.Platforms = map[models.Provider]bool{}
	post.PlatformSpecificContent = map[models.Provider]models.PlatformContent{}
	post.PlatformResponses = map[models.Provider]models.PublishOutcome{}
	for _, field := range []struct {
		raw []byte
		dst interface{}
	}{
		{platforms, &post.Platforms},
		{overrides, &post.PlatformSpecificContent},
		{responses, &post.PlatformResponses},
	} {
		if len(field.raw) == 0 || string(field.raw) == "null" {
			continue
		}
		if err := json.Unmarshal(field.raw, field.dst); err != nil {
			return nil, err
		}
	}
	return &post, nil
}

func (r *postRepository) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1`

	post, err := scanPost(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return post, nil
}

func (r *postRepository) queryPosts(ctx context.Context, query string, args ...interface{}) ([]*models.Post, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var posts []*models.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		posts = append(posts, post)
	}

	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return posts, nil
}

func (r *postRepository) GetByUserID(ctx context.Context, userID int64) ([]*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE user_id = $1 ORDER BY created_at DESC`
	return r.queryPosts(ctx, query, userID)
}

func (r *postRepository) ListDue(ctx context.Context, before time.Time) ([]*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE status = $1 AND scheduled_for <= $2 ORDER BY scheduled_for`
	return r.queryPosts(ctx, query, models.PostStatusScheduled, before)
}

func (r *postRepository) ListStalePublishing(ctx context.Context, before time.Time) ([]*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE status = $1 AND updated_at <= $2 ORDER BY updated_at`
	return r.queryPosts(ctx, query, models.PostStatusPublishing, before)
}

func (r *postRepository) CheckByUserID(ctx context.Context, postID, userID int64) (bool, error) {
	query := "SELECT 1 FROM posts WHERE id = $1 AND user_id = $2"

	var result int
	err := r.db.QueryRowContext(ctx, query, postID, userID).Scan(&result)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		slog.Info(err.Error())
		return false, err
	}

	return result == 1, nil
}

func (r *postRepository) ClaimScheduled(ctx context.Context, id int64) (bool, error) {
	query := `
		UPDATE posts
		SET status = $1,
			updated_at = $2
		WHERE id = $3 AND status = $4
	`
	result, err := r.db.ExecContext(ctx, query, models.PostStatusPublishing, time.Now(), id, models.PostStatusScheduled)
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}
	return affected == 1, nil
}

func (r *postRepository) CompletePublish(ctx context.Context, id int64, outcomes map[models.Provider]models.PublishOutcome) error {
	responses, err := json.Marshal(outcomes)
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	query := `
		UPDATE posts
		SET status = $1,
			platform_responses = $2,
			updated_at = $3
		WHERE id = $4
	`
	_, err = r.db.ExecContext(ctx, query, models.PostStatusPublished, responses, time.Now(), id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *postRepository) AbandonPublishing(ctx context.Context, id int64, outcomes map[models.Provider]models.PublishOutcome) (bool, error) {
	responses, err := json.Marshal(outcomes)
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}

	query := `
		UPDATE posts
		SET status = $1,
			platform_responses = $2,
			updated_at = $3
		WHERE id = $4 AND status = $5
	`
	result, err := r.db.ExecContext(ctx, query, models.PostStatusPublished, responses, time.Now(), id, models.PostStatusPublishing)
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}
	return affected == 1, nil
}

func (r *postRepository) Remove(ctx context.Context, id int64) error {
	query := `DELETE FROM posts WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)

	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
