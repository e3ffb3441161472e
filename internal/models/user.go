// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// Role is the authorization level of a user account.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// UserStatus is the lifecycle state of a user account. Only ACTIVE accounts may log in.
type UserStatus string

const (
	StatusActive   UserStatus = "ACTIVE"
	StatusInactive UserStatus = "INACTIVE"
	StatusBlocked  UserStatus = "BLOCKED"
)

// Valid reports whether s is a known status.
func (s UserStatus) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusBlocked:
		return true
	}
	return false
}

// User represents an account of the folio site.
type User struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Name       string     `gorm:"not null" json:"name"`
	Email      string     `gorm:"uniqueIndex;not null" json:"email"`
	Phone      string     `json:"phone"`
	Password   *string    `json:"-"`
	Picture    string     `json:"picture"`
	Role       Role       `gorm:"type:varchar(16);not null;default:USER" json:"role"`
	Status     UserStatus `gorm:"type:varchar(16);not null;default:ACTIVE" json:"status"`
	IsVerified bool       `gorm:"not null;default:false" json:"is_verified"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// HasPassword reports whether the account can log in with a password.
func (u *User) HasPassword() bool {
	return u.Password != nil && *u.Password != ""
}

// PasswordHash returns the stored hash or "" for federated accounts.
func (u *User) PasswordHash() string {
	if u.Password == nil {
		return ""
	}
	return *u.Password
}

// Public returns the projection of u that is safe to hand to clients.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Role:       u.Role,
		Picture:    u.Picture,
		Phone:      u.Phone,
		Status:     u.Status,
		IsVerified: u.IsVerified,
	}
}

// PublicUser is the credential-free view of a user returned by auth endpoints.
type PublicUser struct {
	ID         uint       `json:"id"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	Role       Role       `json:"role"`
	Picture    string     `json:"picture"`
	Phone      string     `json:"phone"`
	Status     UserStatus `json:"status"`
	IsVerified bool       `json:"is_verified"`
}

// UserProfile is the read projection of a user together with summaries of
// the content they own. It has no password column.
type UserProfile struct {
	ID         uint             `json:"id"`
	Name       string           `json:"name"`
	Email      string           `json:"email"`
	Phone      string           `json:"phone"`
	Picture    string           `json:"picture"`
	Role       Role             `json:"role"`
	Status     UserStatus       `json:"status"`
	IsVerified bool             `json:"is_verified"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
	Posts      []PostSummary    `gorm:"foreignKey:AuthorID" json:"posts"`
	Projects   []ProjectSummary `gorm:"foreignKey:OwnerID" json:"projects"`
}

// TableName maps UserProfile onto the users table.
func (UserProfile) TableName() string {
	return "users"
}

// AuthorSummary is the minimal author/owner view embedded in posts and projects.
type AuthorSummary struct {
	ID      uint   `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture string `json:"picture"`
}

// TableName maps AuthorSummary onto the users table.
func (AuthorSummary) TableName() string {
	return "users"
}

// Identity is the authenticated caller, extracted from a verified token and
// passed explicitly into service calls.
type Identity struct {
	UserID uint
	Email  string
	Role   Role
}

// IsAdmin reports whether the caller holds the ADMIN role.
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}
