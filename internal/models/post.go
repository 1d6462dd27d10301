package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Post represents a blog post, optionally published inside a community.
type Post struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Title       string `gorm:"size:300;not null" json:"title"`
	Description string `gorm:"type:text;not null" json:"description"`
	ReadingTime int    `gorm:"not null" json:"reading_time"`
	ImageURL    string `json:"image_url,omitempty"`
	// AddressID references an entry in the external address registry.
	AddressID   *uuid.UUID `gorm:"type:uuid" json:"address_id,omitempty"`
	AuthorID    uint       `gorm:"not null;index" json:"author_id"`
	Author      User       `gorm:"foreignKey:AuthorID" json:"author"`
	CommunityID *uint      `gorm:"index" json:"community_id,omitempty"`
	Community   *Community `gorm:"foreignKey:CommunityID" json:"community,omitempty"`
	Tags        []Tag      `gorm:"many2many:post_tags" json:"tags"`
	// LikesCount is not persisted; computed at query time
	LikesCount int `gorm:"->" json:"likes_count"`
	// CommentsCount is not persisted; computed at query time
	CommentsCount int `gorm:"->" json:"comments_count"`
	// Liked indicates whether the requesting viewer liked this post (computed)
	Liked     bool           `gorm:"->" json:"liked"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// PageInfo describes the slice of a paginated listing.
type PageInfo struct {
	Page  int   `json:"page"`
	Size  int   `json:"size"`
	Total int64 `json:"total"`
}

// PostPage is one page of a post listing plus pagination metadata.
// Total counts every post matching the filters, not just this page.
type PostPage struct {
	Posts      []*Post  `json:"posts"`
	Pagination PageInfo `json:"pagination"`
}
