package posts

import (
	"time"

	"github.com/google/uuid"

	"github.com/elcilc/clicle/pkg/db/models"
)

// CreatePostRequest is the payload for creating a post.
type CreatePostRequest struct {
	Title string `json:"title" validate:"required,max=200"`
	Body  string `json:"body" validate:"max=10000"`
}

// ModifyPostRequest is the payload for editing a post.
type ModifyPostRequest struct {
	Title string `json:"title" validate:"required,max=200"`
	Body  string `json:"body" validate:"max=10000"`
}

// CommentRequest is the payload for commenting on a post.
type CommentRequest struct {
	Comment string `json:"comment" validate:"required,max=2000"`
}

// PostDTO is the transport shape for a post.
type PostDTO struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CommentDTO is the transport shape for a comment.
type CommentDTO struct {
	ID        uuid.UUID `json:"id"`
	PostID    uuid.UUID `json:"post_id"`
	UserID    uuid.UUID `json:"user_id"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

func PostFromModel(p *models.Post) *PostDTO {
	if p == nil {
		return nil
	}
	return &PostDTO{
		ID:        p.ID,
		UserID:    p.UserID,
		Title:     p.Title,
		Body:      p.Body,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func CommentFromModel(c *models.Comment) *CommentDTO {
	if c == nil {
		return nil
	}
	return &CommentDTO{
		ID:        c.ID,
		PostID:    c.PostID,
		UserID:    c.UserID,
		Comment:   c.Comment,
		CreatedAt: c.CreatedAt,
	}
}

func postsFromModels(rows []models.Post) []PostDTO {
	out := make([]PostDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *PostFromModel(&rows[i]))
	}
	return out
}

func commentsFromModels(rows []models.Comment) []CommentDTO {
	out := make([]CommentDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *CommentFromModel(&rows[i]))
	}
	return out
}
