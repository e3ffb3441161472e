package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"folio/internal/database"
	"folio/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB returns a migrated in-memory SQLite database with foreign keys enforced.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=1"), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(db))
	return db
}

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	return gormDB, mock
}

func createUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	hash := "$2a$10$abcdefghijklmnopqrstuv"
	user := &models.User{
		Name:     "User " + email,
		Email:    email,
		Password: &hash,
		Role:     models.RoleUser,
		Status:   models.StatusActive,
	}
	require.NoError(t, NewUserRepository(db).Create(context.Background(), user))
	return user
}

func createPost(t *testing.T, db *gorm.DB, authorID uint, title string, createdAt time.Time) *models.Post {
	t.Helper()
	post := &models.Post{
		Title:     title,
		Slug:      fmt.Sprintf("%s-%d", title, createdAt.UnixNano()),
		Content:   "Body of " + title,
		AuthorID:  authorID,
		CreatedAt: createdAt,
	}
	require.NoError(t, NewPostRepository(db).Create(context.Background(), post))
	return post
}

func createProject(t *testing.T, db *gorm.DB, ownerID uint, title string, createdAt time.Time) *models.Project {
	t.Helper()
	project := &models.Project{
		Title:       title,
		Slug:        fmt.Sprintf("%s-%d", title, createdAt.UnixNano()),
		Description: "About " + title,
		OwnerID:     ownerID,
		CreatedAt:   createdAt,
	}
	require.NoError(t, NewProjectRepository(db).Create(context.Background(), project))
	return project
}
