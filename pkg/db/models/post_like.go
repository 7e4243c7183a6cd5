package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PostLike records one user liking one post; the composite unique index
// enforces at most one like per user per post.
type PostLike struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	PostID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_post_likes_post_user"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_post_likes_post_user"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (l *PostLike) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
