package service

import (
	"context"
	"testing"

	"folio/internal/cache"
	"folio/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestUserService_CreateUser_Validation(t *testing.T) {
	t.Parallel()

	svc := NewUserService(noopUserRepo(), bcrypt.MinCost)
	ctx := context.Background()

	tests := []struct {
		name  string
		input CreateUserInput
	}{
		{name: "empty name", input: CreateUserInput{Email: "a@example.com"}},
		{name: "bad email", input: CreateUserInput{Name: "Ada", Email: "nope"}},
		{name: "short password", input: CreateUserInput{Name: "Ada", Email: "a@example.com", Password: strPtr("short")}},
		{name: "unknown role", input: CreateUserInput{Name: "Ada", Email: "a@example.com", Role: "ROOT"}},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := svc.CreateUser(ctx, tc.input)
			assertValidationError(t, err)
		})
	}
}

func TestUserService_CreateUser_HashesWithConfiguredCost(t *testing.T) {
	t.Parallel()

	const cost = bcrypt.MinCost + 1
	var stored *models.User
	repo := noopUserRepo()
	repo.createFn = func(_ context.Context, u *models.User) error {
		u.ID = 1
		stored = u
		return nil
	}

	svc := NewUserService(repo, cost)
	user, err := svc.CreateUser(context.Background(), CreateUserInput{
		Name:     " Ada ",
		Email:    "ADA@Example.com",
		Password: strPtr("correct-horse"),
	})
	require.NoError(t, err)
	require.NotNil(t, stored)

	assert.Equal(t, "Ada", user.Name)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.Equal(t, models.StatusActive, user.Status)

	got, err := bcrypt.Cost([]byte(stored.PasswordHash()))
	require.NoError(t, err)
	assert.Equal(t, cost, got)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash()), []byte("correct-horse")))
}

func TestUserService_CreateUser_WithoutPassword(t *testing.T) {
	t.Parallel()

	svc := NewUserService(noopUserRepo(), bcrypt.MinCost)
	user, err := svc.CreateUser(context.Background(), CreateUserInput{Name: "Ada", Email: "a@example.com"})
	require.NoError(t, err)
	assert.False(t, user.HasPassword())
}

func TestUserService_UpdateUser(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("builds update map", func(t *testing.T) {
		const cost = bcrypt.MinCost
		var got map[string]interface{}
		repo := noopUserRepo()
		repo.updateFn = func(_ context.Context, id uint, updates map[string]interface{}) (*models.User, error) {
			got = updates
			return &models.User{ID: id}, nil
		}
		admin := models.RoleAdmin
		blocked := models.StatusBlocked

		svc := NewUserService(repo, cost)
		_, err := svc.UpdateUser(ctx, 4, UpdateUserInput{
			Name:       strPtr("Grace"),
			Email:      strPtr(" Grace@Example.com"),
			Password:   strPtr("new-password"),
			Role:       &admin,
			Status:     &blocked,
			IsVerified: boolPtr(true),
		})
		require.NoError(t, err)

		assert.Equal(t, "Grace", got["name"])
		assert.Equal(t, "grace@example.com", got["email"])
		assert.Equal(t, models.RoleAdmin, got["role"])
		assert.Equal(t, models.StatusBlocked, got["status"])
		assert.Equal(t, true, got["is_verified"])

		hash, ok := got["password"].(string)
		require.True(t, ok)
		c, err := bcrypt.Cost([]byte(hash))
		require.NoError(t, err)
		assert.Equal(t, cost, c)
	})

	t.Run("empty input passes empty map", func(t *testing.T) {
		var got map[string]interface{}
		repo := noopUserRepo()
		repo.updateFn = func(_ context.Context, id uint, updates map[string]interface{}) (*models.User, error) {
			got = updates
			return &models.User{ID: id}, nil
		}
		_, err := NewUserService(repo, bcrypt.MinCost).UpdateUser(ctx, 4, UpdateUserInput{})
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("invalid status", func(t *testing.T) {
		bad := models.UserStatus("GONE")
		_, err := NewUserService(noopUserRepo(), bcrypt.MinCost).UpdateUser(ctx, 4, UpdateUserInput{Status: &bad})
		assertValidationError(t, err)
	})

	t.Run("not found propagates", func(t *testing.T) {
		repo := noopUserRepo()
		repo.updateFn = func(_ context.Context, id uint, _ map[string]interface{}) (*models.User, error) {
			return nil, models.NewNotFoundError("User", id)
		}
		_, err := NewUserService(repo, bcrypt.MinCost).UpdateUser(ctx, 99, UpdateUserInput{Name: strPtr("X")})
		assertAppErrorCode(t, err, models.CodeNotFound)
	})
}

func TestUserService_UpdateUser_DropsOwnedProjectCache(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := noopUserRepo()
	repo.getProfileFn = func(_ context.Context, id uint) (*models.UserProfile, error) {
		return &models.UserProfile{ID: id, Projects: []models.ProjectSummary{
			{ID: 4, Slug: "cli-toolkit"},
			{ID: 9, Slug: "photo-site"},
		}}, nil
	}
	svc := NewUserService(repo, bcrypt.MinCost).WithCache(cache.NewStore(client))
	ctx := context.Background()

	seed := func() {
		for _, key := range []string{"project:4", "project:slug:cli-toolkit", "project:9", "project:slug:photo-site", "project:7"} {
			require.NoError(t, mr.Set(key, "{}"))
		}
	}

	seed()
	_, err := svc.UpdateUser(ctx, 3, UpdateUserInput{Phone: strPtr("555-0100")})
	require.NoError(t, err)
	assert.True(t, mr.Exists("project:4"), "phone is not part of the cached owner summary")

	_, err = svc.UpdateUser(ctx, 3, UpdateUserInput{Name: strPtr("Renamed Owner")})
	require.NoError(t, err)
	for _, key := range []string{"project:4", "project:slug:cli-toolkit", "project:9", "project:slug:photo-site"} {
		assert.False(t, mr.Exists(key), key)
	}
	assert.True(t, mr.Exists("project:7"))

	seed()
	_, err = svc.UpdateUser(ctx, 3, UpdateUserInput{Picture: strPtr("https://example.com/me.png")})
	require.NoError(t, err)
	assert.False(t, mr.Exists("project:slug:photo-site"))
}

func TestUpdateUserInput_Privileged(t *testing.T) {
	t.Parallel()

	role := models.RoleAdmin
	assert.False(t, UpdateUserInput{Name: strPtr("x"), Password: strPtr("y")}.Privileged())
	assert.True(t, UpdateUserInput{Role: &role}.Privileged())
	assert.True(t, UpdateUserInput{IsVerified: boolPtr(false)}.Privileged())
}

func TestNewUserService_DefaultCost(t *testing.T) {
	t.Parallel()

	svc := NewUserService(noopUserRepo(), 0)
	assert.Equal(t, bcrypt.DefaultCost, svc.bcryptCost)
}
