package comment

import (
	"time"

	"portal-content/internal/domain/entity"
)

// DTO is the wire form of a comment.
type DTO struct {
	ID        string    `json:"id_comment"`
	ArticleID string    `json:"id_article"`
	AuthorID  string    `json:"author_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type createRequest struct {
	Content string `json:"content"`
}

func toDTO(c *entity.Comment) DTO {
	return DTO{
		ID:        c.ID,
		ArticleID: c.ArticleID,
		AuthorID:  c.AuthorID,
		Content:   c.Content,
		CreatedAt: c.CreatedAt,
	}
}
