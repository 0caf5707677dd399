// Package comment provides the comment use cases: creating comments with
// per-article sequential identifiers, author-only deletion, and newest-first
// pagination with an exact total.
package comment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"portal-content/internal/common/pagination"
	"portal-content/internal/domain/entity"
	"portal-content/internal/observability/logging"
	"portal-content/internal/observability/metrics"
	"portal-content/internal/repository"
	"portal-content/internal/resilience/faultclass"
	"portal-content/internal/resilience/retry"
	"portal-content/internal/resilience/tier"
)

// Config holds comment service settings.
type Config struct {
	DefaultPageSize int
	MaxPageSize     int
	// MaxCreateAttempts bounds serial allocation retries after a lost race.
	MaxCreateAttempts int
}

// DefaultConfig returns the default comment configuration.
func DefaultConfig() Config {
	return Config{
		DefaultPageSize:   10,
		MaxPageSize:       50,
		MaxCreateAttempts: 5,
	}
}

// Page is one window of an article's comments.
type Page struct {
	Items []entity.Comment
	// Total is the article's full comment count, independent of the window.
	Total   int64
	Limit   int
	Offset  int
	HasMore bool
	// Tier reports how the page was read; Exhausted means storage was unavailable
	// and the page is empty.
	Tier tier.Outcome
}

// Service provides comment management use cases.
type Service struct {
	Repo     repository.CommentRepository
	Executor *tier.Executor
	Config   Config
	// Now is the clock used for CreatedAt. Nil means time.Now.
	Now func() time.Time
}

// NewService creates a comment service.
func NewService(repo repository.CommentRepository, ex *tier.Executor, cfg Config) *Service {
	return &Service{Repo: repo, Executor: ex, Config: cfg}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) pageConfig() pagination.Config {
	cfg := pagination.Config{DefaultLimit: s.Config.DefaultPageSize, MaxLimit: s.Config.MaxPageSize}
	def := DefaultConfig()
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = def.DefaultPageSize
	}
	if cfg.MaxLimit <= 0 {
		cfg.MaxLimit = def.MaxPageSize
	}
	return cfg
}

// notProvisioned turns a missing comments table into entity.ErrNotProvisioned.
func notProvisioned(op string, err error) error {
	if faultclass.Classify(err) == faultclass.SchemaMissing {
		return fmt.Errorf("%s: %w: %w", op, entity.ErrNotProvisioned, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// Create stores a new comment and assigns its sequential identifier.
// Concurrent writers on the same article may collide on a serial; the loser
// retries with a fresh serial up to MaxCreateAttempts times.
func (s *Service) Create(ctx context.Context, articleID, authorID, content string) (*entity.Comment, error) {
	if err := entity.ValidateEntityID("id_article", articleID); err != nil {
		return nil, err
	}
	if err := entity.ValidateActorID("author_id", authorID); err != nil {
		return nil, err
	}
	if err := entity.ValidateCommentContent(content); err != nil {
		return nil, err
	}

	c := &entity.Comment{
		ArticleID: articleID,
		AuthorID:  authorID,
		Content:   content,
		CreatedAt: s.now().UTC(),
	}

	attempts := s.Config.MaxCreateAttempts
	if attempts <= 0 {
		attempts = DefaultConfig().MaxCreateAttempts
	}
	err := retry.WithBackoff(ctx, retry.ConflictConfig(attempts), func() error {
		err := s.Repo.Create(ctx, c)
		if errors.Is(err, entity.ErrConflict) {
			metrics.RecordCommentSerialConflict()
		}
		return err
	})
	if err != nil {
		metrics.RecordCommentWrite("create", false)
		return nil, notProvisioned("create comment", err)
	}

	metrics.RecordCommentWrite("create", true)
	logging.WithRequestID(ctx, logging.FromContext(ctx)).Info("comment created",
		slog.String("id_comment", c.ID),
		slog.String("id_article", c.ArticleID))
	return c, nil
}

// Delete removes a comment on behalf of requesterID.
// Only the author may delete; anyone else gets entity.ErrUnauthorized and the
// comment is left untouched.
func (s *Service) Delete(ctx context.Context, commentID, requesterID string) error {
	if _, _, err := entity.ParseCommentID(commentID); err != nil {
		return err
	}
	if err := entity.ValidateActorID("requester", requesterID); err != nil {
		return err
	}

	c, err := s.Repo.Get(ctx, commentID)
	if err != nil {
		metrics.RecordCommentWrite("delete", false)
		return notProvisioned("delete comment", err)
	}
	if c.AuthorID != requesterID {
		metrics.RecordCommentWrite("delete", false)
		return fmt.Errorf("delete comment %s: %w", commentID, entity.ErrUnauthorized)
	}

	if err := s.Repo.Delete(ctx, commentID, requesterID); err != nil {
		metrics.RecordCommentWrite("delete", false)
		return notProvisioned("delete comment", err)
	}
	metrics.RecordCommentWrite("delete", true)
	return nil
}

type window struct {
	items []entity.Comment
	total int64
}

// Page returns one window of an article's comments, newest first.
// The limit is clamped to [1, MaxPageSize] and defaults to DefaultPageSize;
// a negative offset is treated as zero. When storage is unavailable or the
// comments feature is not provisioned, the page is empty with Total 0.
func (s *Service) Page(ctx context.Context, articleID string, limit, offset int) (*Page, error) {
	if err := entity.ValidateEntityID("id_article", articleID); err != nil {
		return nil, err
	}
	params := pagination.Params{Limit: limit, Offset: offset}.Normalize(s.pageConfig())

	w, outcome, err := tier.Run(ctx, s.Executor, "comments_page",
		tier.Strategy[window]{Name: tier.Live, Run: func(ctx context.Context) (window, error) {
			total, err := s.Repo.CountByArticle(ctx, articleID)
			if err != nil {
				return window{}, err
			}
			if total == 0 || int64(params.Offset) >= total {
				return window{items: []entity.Comment{}, total: total}, nil
			}
			items, err := s.Repo.ListByArticle(ctx, articleID, params.Limit, params.Offset)
			if err != nil {
				return window{}, err
			}
			return window{items: items, total: total}, nil
		}})
	if err != nil && !outcome.Exhausted {
		return nil, fmt.Errorf("comments page: %w", err)
	}
	if w.items == nil {
		w.items = []entity.Comment{}
	}

	meta := pagination.NewMetadata(params, w.total, len(w.items))
	return &Page{
		Items:   w.items,
		Total:   meta.Total,
		Limit:   meta.Limit,
		Offset:  meta.Offset,
		HasMore: meta.HasMore,
		Tier:    outcome,
	}, nil
}
