package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"portal-content/internal/domain/entity"
	"portal-content/internal/infra/db"
	"portal-content/internal/observability/metrics"
	"portal-content/internal/repository"
)

type CommentRepo struct {
	db db.Querier
}

func NewCommentRepo(q db.Querier) repository.CommentRepository {
	return &CommentRepo{db: q}
}

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

	const nextSerial = `
SELECT COALESCE(MAX(serial), 0) + 1
FROM comments
WHERE id_article = $1`
	var serial int
	if err = tx.QueryRowContext(ctx, nextSerial, c.ArticleID).Scan(&serial); err != nil {
		return fmt.Errorf("Create: next serial: %w", err)
	}

	id := entity.FormatCommentID(c.ArticleID, serial)
	const insert = `
INSERT INTO comments (id_comment, id_article, serial, author_id, content, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err = tx.ExecContext(ctx, insert, id, c.ArticleID, serial, c.AuthorID, c.Content, c.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("Create: serial %d taken: %w", serial, entity.ErrConflict)
		}
		return fmt.Errorf("Create: %w", err)
	}

	if err = tx.Commit(); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("Create: serial %d taken: %w", serial, entity.ErrConflict)
		}
		return fmt.Errorf("Create: Commit: %w", err)
	}

	c.Serial = serial
	c.ID = id
	return nil
}

func (repo *CommentRepo) Get(ctx context.Context, id string) (*entity.Comment, error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("CommentGet", time.Since(start)) }()

	const query = `
SELECT id_comment, id_article, serial, author_id, content, created_at
FROM comments
WHERE id_comment = $1
LIMIT 1`
	rows, err := repo.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	defer func() { _ = rows.Close() }()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("Get: %w", err)
		}
		return nil, fmt.Errorf("Get: %w", entity.ErrNotFound)
	}
	var c entity.Comment
	if err := rows.Scan(&c.ID, &c.ArticleID, &c.Serial, &c.AuthorID, &c.Content, &c.CreatedAt); err != nil {
		return nil, fmt.Errorf("Get: Scan: %w", err)
	}
	return &c, nil
}

func (repo *CommentRepo) Delete(ctx context.Context, id, authorID string) error {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("CommentDelete", time.Since(start)) }()

	const query = `DELETE FROM comments WHERE id_comment = $1 AND author_id = $2`
	res, err := repo.db.ExecContext(ctx, query, id, authorID)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("Delete: RowsAffected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("Delete: %w", entity.ErrNotFound)
	}
	return nil
}

func (repo *CommentRepo) CountByArticle(ctx context.Context, articleID string) (int64, error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("CommentCount", time.Since(start)) }()

	const query = `SELECT COUNT(*) FROM comments WHERE id_article = $1`
	rows, err := repo.db.QueryContext(ctx, query, articleID)
	if err != nil {
		return 0, fmt.Errorf("CountByArticle: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var count int64
	if rows.Next() {
		if err := rows.Scan(&count); err != nil {
			return 0, fmt.Errorf("CountByArticle: Scan: %w", err)
		}
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("CountByArticle: %w", err)
	}
	return count, nil
}

func (repo *CommentRepo) ListByArticle(ctx context.Context, articleID string, limit, offset int) ([]entity.Comment, error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("CommentList", time.Since(start)) }()

	const query = `
SELECT id_comment, id_article, serial, author_id, content, created_at
FROM comments
WHERE id_article = $1
ORDER BY created_at DESC, serial DESC
LIMIT $2 OFFSET $3`
	rows, err := repo.db.QueryContext(ctx, query, articleID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("ListByArticle: %w", err)
	}
	defer func() { _ = rows.Close() }()

	result := make([]entity.Comment, 0, limit)
	for rows.Next() {
		var c entity.Comment
		if err := rows.Scan(&c.ID, &c.ArticleID, &c.Serial, &c.AuthorID, &c.Content, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("ListByArticle: Scan: %w", err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListByArticle: %w", err)
	}
	return result, nil
}

// isUniqueViolation reports whether err is a PostgreSQL unique_violation (23505),
// from either the pgx or the lib/pq driver.
func isUniqueViolation(err error) bool {
	const uniqueViolation = "23505"
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return true
	}
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation
}
