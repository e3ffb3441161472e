package models

import (
	"database/sql/driver"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Tags is a set of post labels. It is stored as text[] on PostgreSQL and as
// the array literal text on other dialects.
type Tags []string

// Value implements driver.Valuer.
func (t Tags) Value() (driver.Value, error) {
	if t == nil {
		return pq.StringArray{}.Value()
	}
	return pq.StringArray(t).Value()
}

// Scan implements sql.Scanner.
func (t *Tags) Scan(src interface{}) error {
	var arr pq.StringArray
	if err := arr.Scan(src); err != nil {
		return err
	}
	*t = Tags(arr)
	return nil
}

// GormDBDataType picks the column type per dialect.
func (Tags) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "text[]"
	}
	return "text"
}

// Post represents a blog post.
type Post struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	Title      string         `gorm:"not null" json:"title"`
	Slug       string         `gorm:"uniqueIndex;not null" json:"slug"`
	Content    string         `gorm:"type:text;not null" json:"content"`
	Thumbnail  string         `json:"thumbnail"`
	Tags       Tags           `gorm:"not null;default:'{}'" json:"tags"`
	IsFeatured bool           `gorm:"not null;default:false;index" json:"is_featured"`
	ViewCount  int            `gorm:"not null;default:0" json:"view_count"`
	AuthorID   uint           `gorm:"not null;index" json:"author_id"`
	Author     *AuthorSummary `gorm:"foreignKey:AuthorID;constraint:OnDelete:RESTRICT" json:"author,omitempty"`
	// ContentHTML is not persisted; filled when rendered markdown is requested
	ContentHTML string    `gorm:"-" json:"content_html,omitempty"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// PostSummary is the lightweight post view nested under user profiles.
type PostSummary struct {
	ID        uint      `json:"id"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	AuthorID  uint      `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName maps PostSummary onto the posts table.
func (PostSummary) TableName() string {
	return "posts"
}

// ViewStats aggregates view_count across all posts.
type ViewStats struct {
	TotalPosts int64   `json:"total_posts"`
	TotalViews int64   `json:"total_views"`
	AvgViews   float64 `json:"avg_views"`
	MinViews   int64   `json:"min_views"`
	MaxViews   int64   `json:"max_views"`
}

// BlogStats is the result of the blog statistics query.
type BlogStats struct {
	Stats             ViewStats `json:"stats"`
	FeaturedCount     int64     `json:"featured_count"`
	TopFeatured       *Post     `json:"top_featured"`
	LastWeekPostCount int64     `json:"last_week_post_count"`
}
