package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"yt_harvester/internal/domain"
)

type CommentStore struct {
	db *sqlx.DB
}

func NewCommentStore(db *sqlx.DB) *CommentStore {
	return &CommentStore{db: db}
}

func (s *CommentStore) ExistingIDs(ctx context.Context, ids []string) (map[string]struct{}, error) {
	return existingIDs(ctx, GetExecutor(ctx, s.db), "comments", ids)
}

func (s *CommentStore) Insert(ctx context.Context, comment *domain.Comment) error {
	publishedAt, err := wireTime(comment.PublishedAt)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO comments (id, video_id, text, author, published_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err = GetExecutor(ctx, s.db).ExecContext(ctx, query,
		comment.ID,
		comment.VideoID,
		comment.Text,
		comment.Author,
		publishedAt,
	)
	return err
}
