package sqlite

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"portal-content/internal/domain/entity"
	"portal-content/internal/infra/db"
	"portal-content/internal/observability/metrics"
	"portal-content/internal/repository"
)

// CommentRepo implements the CommentRepository interface using SQLite.
type CommentRepo struct{ db db.Querier }

// NewCommentRepo creates a new SQLite-backed comment repository.
func NewCommentRepo(q db.Querier) repository.CommentRepository {
	return &CommentRepo{db: q}
}

// Create allocates the next serial and inserts the comment in one transaction.
func (repo *CommentRepo) Create(ctx context.Context, c *entity.Comment) (err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("CommentCreate", time.Since(start)) }()

	tx, err := repo.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("Create: BeginTx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var serial int
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(serial), 0) + 1 FROM comments WHERE id_article = ?`, c.ArticleID).Scan(&serial)
	if err != nil {
		return fmt.Errorf("Create: next serial: %w", err)
	}

	id := entity.FormatCommentID(c.ArticleID, serial)
	const insert = `
INSERT INTO comments (id_comment, id_article, serial, author_id, content, created_at)
VALUES (?, ?, ?, ?, ?, ?)`
	if _, err = tx.ExecContext(ctx, insert, id, c.ArticleID, serial, c.AuthorID, c.Content, c.CreatedAt.UTC()); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("Create: serial %d taken: %w", serial, entity.ErrConflict)
		}
		return fmt.Errorf("Create: ExecContext: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("Create: Commit: %w", err)
	}

	c.Serial = serial
	c.ID = id
	return nil
}

// Get retrieves a comment by its composite ID.
func (repo *CommentRepo) Get(ctx context.Context, id string) (*entity.Comment, error) {
	list, err := repo.list(ctx, "CommentGet", `
SELECT id_comment, id_article, serial, author_id, content, created_at
FROM comments
WHERE id_comment = ?
LIMIT 1`, id)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, entity.ErrNotFound
	}
	return &list[0], nil
}

// Delete removes the comment if authorID wrote it.
func (repo *CommentRepo) Delete(ctx context.Context, id, authorID string) error {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("CommentDelete", time.Since(start)) }()

	res, err := repo.db.ExecContext(ctx, `DELETE FROM comments WHERE id_comment = ? AND author_id = ?`, id, authorID)
	if err != nil {
		return fmt.Errorf("Delete: ExecContext: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("Delete: RowsAffected: %w", err)
	}
	if n == 0 {
		return entity.ErrNotFound
	}
	return nil
}

// CountByArticle returns the total number of comments on an article.
func (repo *CommentRepo) CountByArticle(ctx context.Context, articleID string) (int64, error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("CommentCount", time.Since(start)) }()

	rows, err := repo.db.QueryContext(ctx, `SELECT COUNT(*) FROM comments WHERE id_article = ?`, articleID)
	if err != nil {
		return 0, fmt.Errorf("CountByArticle: QueryContext: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var count int64
	if rows.Next() {
		if err := rows.Scan(&count); err != nil {
			return 0, fmt.Errorf("CountByArticle: Scan: %w", err)
		}
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("CountByArticle: rows.Err: %w", err)
	}
	return count, nil
}

// ListByArticle retrieves a window of an article's comments, newest first.
func (repo *CommentRepo) ListByArticle(ctx context.Context, articleID string, limit, offset int) ([]entity.Comment, error) {
	return repo.list(ctx, "CommentList", `
SELECT id_comment, id_article, serial, author_id, content, created_at
FROM comments
WHERE id_article = ?
ORDER BY created_at DESC, serial DESC
LIMIT ? OFFSET ?`, articleID, limit, offset)
}

func (repo *CommentRepo) list(ctx context.Context, op, query string, args ...any) ([]entity.Comment, error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery(op, time.Since(start)) }()

	rows, err := repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: QueryContext: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	comments := make([]entity.Comment, 0, 10)
	for rows.Next() {
		var c entity.Comment
		if err := rows.Scan(&c.ID, &c.ArticleID, &c.Serial, &c.AuthorID, &c.Content, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: Scan: %w", op, err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows.Err: %w", op, err)
	}
	return comments, nil
}

// isUniqueViolation reports whether err is a SQLite UNIQUE or PRIMARY KEY constraint failure.
func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	case sqlite3.SQLITE_CONSTRAINT:
		return strings.Contains(se.Error(), "UNIQUE constraint failed")
	}
	return false
}
