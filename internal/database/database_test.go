package database

import (
	"context"
	"testing"

	"folio/internal/config"
	"folio/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
)

func TestDSN(t *testing.T) {
	cfg := &config.Config{
		DBHost:     "db",
		DBPort:     "5432",
		DBUser:     "folio",
		DBPassword: "secret",
		DBName:     "folio",
	}
	assert.Equal(t, "host=db port=5432 user=folio password=secret dbname=folio sslmode=disable", DSN(cfg))

	cfg.DBSSLMode = "require"
	assert.Contains(t, DSN(cfg), "sslmode=require")
}

func TestOpenAndMigrate(t *testing.T) {
	cfg := &config.Config{
		DBMaxOpenConns:           1,
		DBMaxIdleConns:           1,
		DBConnMaxLifetimeMinutes: 15,
	}

	db, err := Open(sqlite.Open("file::memory:?_foreign_keys=1"), cfg)
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))
	require.NoError(t, Ping(context.Background(), db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)

	for _, table := range []string{"users", "posts", "projects"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}

	user := models.User{Name: "Ada", Email: "ada@example.com"}
	require.NoError(t, db.Create(&user).Error)

	var stored models.User
	require.NoError(t, db.First(&stored, user.ID).Error)
	assert.Equal(t, models.RoleUser, stored.Role)
	assert.Equal(t, models.StatusActive, stored.Status)
	assert.Nil(t, stored.Password)
}
