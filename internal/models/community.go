package models

import (
	"time"
)

// CommunityPost carries two denormalized counters. LikeCount and CommentCount
// only ever move through atomic SQL increments issued by the post repository;
// writing them from client-computed values would lose updates under
// concurrent likers.
type CommunityPost struct {
	ID      uint   `json:"id" gorm:"primaryKey"`
	Content string `json:"content" gorm:"not null;type:text" validate:"required,max=5000"`

	OwnerID string `json:"owner_id" gorm:"not null;index;size:255"`

	// Optional shared material attached to the post.
	MaterialID *uint `json:"material_id" gorm:"index"`

	// Denormalized counters
	LikeCount    int `json:"like_count" gorm:"not null;default:0"`
	CommentCount int `json:"comment_count" gorm:"not null;default:0"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Owner    Profile        `json:"owner" gorm:"foreignKey:OwnerID"`
	Material *StudyMaterial `json:"material,omitempty" gorm:"foreignKey:MaterialID"`
	Comments []PostComment  `json:"comments,omitempty" gorm:"foreignKey:PostID"`
}

func (CommunityPost) TableName() string {
	return "community_posts"
}

type PostComment struct {
	ID      uint   `json:"id" gorm:"primaryKey"`
	PostID  uint   `json:"post_id" gorm:"not null;index"`
	Content string `json:"content" gorm:"not null;type:text" validate:"required,max=2000"`

	OwnerID string `json:"owner_id" gorm:"not null;index;size:255"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Post  CommunityPost `json:"post" gorm:"foreignKey:PostID"`
	Owner Profile       `json:"owner" gorm:"foreignKey:OwnerID"`
}

func (PostComment) TableName() string {
	return "post_comments"
}

// PostLike backs the like counter; the unique index makes a double-like from
// the same user a constraint violation rather than a silent double count.
type PostLike struct {
	ID     uint   `json:"id" gorm:"primaryKey"`
	PostID uint   `json:"post_id" gorm:"not null;uniqueIndex:idx_post_likes_post_user"`
	UserID string `json:"user_id" gorm:"not null;uniqueIndex:idx_post_likes_post_user;size:255"`

	CreatedAt time.Time `json:"created_at"`
}

func (PostLike) TableName() string {
	return "post_likes"
}
