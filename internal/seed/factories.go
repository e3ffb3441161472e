package seed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"folio/internal/models"
	"folio/internal/slug"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DemoPassword is the password of every demo user.
const DemoPassword = "password123"

// DemoOptions sizes the generated demo content.
type DemoOptions struct {
	Users           int
	PostsPerUser    int
	ProjectsPerUser int
	// MaxDays spreads created_at over the trailing window.
	MaxDays int
	// Seed makes the generated content reproducible when non-zero.
	Seed int64
}

// DemoResult counts the rows a Demo run inserted.
type DemoResult struct {
	Users    int
	Posts    int
	Projects int
}

// Factory builds demo users, posts and projects for local development.
type Factory struct {
	db    *gorm.DB
	faker *gofakeit.Faker
	opts  DemoOptions
	now   func() time.Time
}

// NewFactory returns a Factory writing through db.
func NewFactory(db *gorm.DB, opts DemoOptions) *Factory {
	if opts.MaxDays <= 0 {
		opts.MaxDays = 90
	}
	return &Factory{db: db, faker: gofakeit.New(opts.Seed), opts: opts, now: time.Now}
}

// BuildUser returns an unsaved demo user.
func (f *Factory) BuildUser(passwordHash string) *models.User {
	first, last := f.faker.FirstName(), f.faker.LastName()
	return &models.User{
		Name:       first + " " + last,
		Email:      strings.ToLower(fmt.Sprintf("%s.%s.%d@example.com", first, last, f.faker.Number(1000, 9999))),
		Phone:      f.faker.Phone(),
		Password:   &passwordHash,
		Picture:    fmt.Sprintf("https://i.pravatar.cc/150?u=%s", f.faker.UUID()),
		Role:       models.RoleUser,
		Status:     models.StatusActive,
		IsVerified: f.faker.Bool(),
	}
}

// BuildPost returns an unsaved demo post by author.
func (f *Factory) BuildPost(authorID uint) *models.Post {
	title := strings.TrimSuffix(f.faker.Sentence(5), ".")
	var body strings.Builder
	fmt.Fprintf(&body, "# %s\n\n", title)
	for i := 0; i < 3; i++ {
		body.WriteString(f.faker.Paragraph(1, 4, 12, " "))
		body.WriteString("\n\n")
	}

	tags := make(models.Tags, 0, 3)
	for _, w := range []string{f.faker.Hobby(), f.faker.ProgrammingLanguage()} {
		tags = append(tags, strings.ToLower(w))
	}

	return &models.Post{
		Title:      title,
		Slug:       slug.Generate(title),
		Content:    body.String(),
		Thumbnail:  fmt.Sprintf("https://picsum.photos/seed/%s/800/450", f.faker.UUID()),
		Tags:       tags,
		IsFeatured: f.faker.Number(1, 5) == 1,
		ViewCount:  f.faker.Number(0, 500),
		AuthorID:   authorID,
		CreatedAt:  f.createdAt(),
	}
}

// BuildProject returns an unsaved demo project owned by owner.
func (f *Factory) BuildProject(ownerID uint) *models.Project {
	title := f.faker.AppName()
	return &models.Project{
		Title:       title,
		Slug:        slug.Generate(title),
		Description: f.faker.Paragraph(1, 3, 10, " "),
		Thumbnail:   fmt.Sprintf("https://picsum.photos/seed/%s/800/450", f.faker.UUID()),
		LiveURL:     f.faker.URL(),
		RepoURL:     fmt.Sprintf("https://github.com/%s/%s", strings.ToLower(f.faker.Username()), slug.Base(title)),
		IsFeatured:  f.faker.Number(1, 4) == 1,
		OwnerID:     ownerID,
		CreatedAt:   f.createdAt(),
	}
}

// Demo inserts the configured number of users with their posts and
// projects in one transaction.
func (f *Factory) Demo(ctx context.Context) (*DemoResult, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.MinCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash demo password: %w", err)
	}

	result := &DemoResult{}
	err = f.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := 0; i < f.opts.Users; i++ {
			user := f.BuildUser(string(hash))
			if err := tx.Create(user).Error; err != nil {
				return fmt.Errorf("failed to create demo user: %w", err)
			}
			result.Users++

			for j := 0; j < f.opts.PostsPerUser; j++ {
				if err := tx.Create(f.BuildPost(user.ID)).Error; err != nil {
					return fmt.Errorf("failed to create demo post: %w", err)
				}
				result.Posts++
			}
			for j := 0; j < f.opts.ProjectsPerUser; j++ {
				if err := tx.Create(f.BuildProject(user.ID)).Error; err != nil {
					return fmt.Errorf("failed to create demo project: %w", err)
				}
				result.Projects++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (f *Factory) createdAt() time.Time {
	back := time.Duration(f.faker.Number(0, f.opts.MaxDays*24*60)) * time.Minute
	return f.now().UTC().Add(-back)
}
