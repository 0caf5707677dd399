package repository

import (
	"context"

	"portal-content/internal/domain/entity"
)

type CommentRepository interface {
	// Create allocates the next serial for c.ArticleID (one past the current maximum)
	// and inserts the comment in a single transaction, filling in c.Serial and c.ID.
	// A lost race on the (article, serial) unique key returns entity.ErrConflict.
	Create(ctx context.Context, c *entity.Comment) error
	// Get returns entity.ErrNotFound if the comment does not exist.
	Get(ctx context.Context, id string) (*entity.Comment, error)
	// Delete removes the comment only if authorID wrote it.
	// Returns entity.ErrNotFound if no such comment by that author exists.
	Delete(ctx context.Context, id, authorID string) error
	// CountByArticle returns the total number of comments on an article.
	CountByArticle(ctx context.Context, articleID string) (int64, error)
	// ListByArticle returns a window of comments ordered newest first
	// (created_at DESC, serial DESC).
	ListByArticle(ctx context.Context, articleID string, limit, offset int) ([]entity.Comment, error)
}
