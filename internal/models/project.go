package models

import "time"

// Project represents a portfolio project.
type Project struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Title       string         `gorm:"not null" json:"title"`
	Slug        string         `gorm:"uniqueIndex;not null" json:"slug"`
	Description string         `gorm:"type:text" json:"description"`
	Thumbnail   string         `json:"thumbnail"`
	LiveURL     string         `json:"live_url"`
	RepoURL     string         `json:"repo_url"`
	IsFeatured  bool           `gorm:"not null;default:false;index" json:"is_featured"`
	OwnerID     uint           `gorm:"not null;index" json:"owner_id"`
	Owner       *AuthorSummary `gorm:"foreignKey:OwnerID;constraint:OnDelete:RESTRICT" json:"owner,omitempty"`
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// ProjectSummary is the lightweight project view nested under user profiles.
type ProjectSummary struct {
	ID        uint      `json:"id"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	OwnerID   uint      `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName maps ProjectSummary onto the projects table.
func (ProjectSummary) TableName() string {
	return "projects"
}

// ProjectStats is the result of the project statistics query.
type ProjectStats struct {
	TotalProjects        int64     `json:"total_projects"`
	FeaturedCount        int64     `json:"featured_count"`
	LastWeekProjectCount int64     `json:"last_week_project_count"`
	RecentProjects       []Project `json:"recent_projects"`
}
