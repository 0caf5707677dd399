package entity

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// commentSerialWidth is the zero-padded width of the per-article serial.
	commentSerialWidth = 5

	// MaxCommentLength bounds the comment body in characters.
	MaxCommentLength = 5000
)

// Comment is a reader comment attached to exactly one article.
// ID is derived from the article ID and the per-article serial, see FormatCommentID.
type Comment struct {
	ID        string    `json:"id_comment"`
	ArticleID string    `json:"id_article"`
	Serial    int       `json:"-"`
	AuthorID  string    `json:"author_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// FormatCommentID builds the composite comment identifier, e.g. "art-42-00001".
func FormatCommentID(articleID string, serial int) string {
	return fmt.Sprintf("%s-%0*d", articleID, commentSerialWidth, serial)
}

// ParseCommentID splits a composite comment identifier into article ID and serial.
// The article ID may itself contain dashes; only the last segment is the serial.
func ParseCommentID(id string) (articleID string, serial int, err error) {
	idx := strings.LastIndexByte(id, '-')
	if idx <= 0 || idx == len(id)-1 {
		return "", 0, &ValidationError{Field: "id_comment", Message: "invalid comment id"}
	}
	serial, err = strconv.Atoi(id[idx+1:])
	if err != nil || serial <= 0 {
		return "", 0, &ValidationError{Field: "id_comment", Message: "invalid comment id"}
	}
	return id[:idx], serial, nil
}

// ValidateCommentContent checks that a comment body is present and within bounds.
func ValidateCommentContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return &ValidationError{Field: "content", Message: "content is required"}
	}
	if utf8.RuneCountInString(content) > MaxCommentLength {
		return &ValidationError{
			Field:   "content",
			Message: fmt.Sprintf("content must not exceed %d characters", MaxCommentLength),
		}
	}
	return nil
}
