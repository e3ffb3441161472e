// Package validation provides input validation utilities
package validation

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	MaxTitleLength = 200
	MaxSlugLength  = 120
	MaxTags        = 20
	MaxTagLength   = 40
	// bcrypt ignores input beyond 72 bytes
	MaxPasswordBytes  = 72
	MinPasswordLength = 8
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	slugRegex  = regexp.MustCompile(`^[a-z0-9_-]+$`)
)

// ValidateEmail checks basic email format
func ValidateEmail(email string) error {
	if len(email) > 254 {
		return fmt.Errorf("email must not exceed 254 characters")
	}
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format")
	}
	return nil
}

// ValidatePassword checks password length bounds.
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters long", MinPasswordLength)
	}
	if len(password) > MaxPasswordBytes {
		return fmt.Errorf("password must not exceed %d bytes", MaxPasswordBytes)
	}
	return nil
}

// ValidateName requires a non-blank display name of at most 100 characters.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("name is required")
	}
	if utf8.RuneCountInString(name) > 100 {
		return fmt.Errorf("name must not exceed 100 characters")
	}
	return nil
}

// ValidateTitle requires a non-blank title within MaxTitleLength.
func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("title is required")
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return fmt.Errorf("title must not exceed %d characters", MaxTitleLength)
	}
	return nil
}

// ValidateSlug checks a caller supplied slug.
func ValidateSlug(slug string) error {
	if len(slug) > MaxSlugLength {
		return fmt.Errorf("slug must not exceed %d characters", MaxSlugLength)
	}
	if !slugRegex.MatchString(slug) {
		return fmt.Errorf("slug can only contain lowercase letters, numbers, underscores, and hyphens")
	}
	return nil
}

// ValidateURL accepts an empty string or an absolute http(s) URL.
func ValidateURL(field, raw string) error {
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("%s must be an absolute http or https URL", field)
	}
	return nil
}

// ValidateTags limits the number and length of tags and rejects blank ones.
func ValidateTags(tags []string) error {
	if len(tags) > MaxTags {
		return fmt.Errorf("at most %d tags are allowed", MaxTags)
	}
	for _, tag := range tags {
		if strings.TrimSpace(tag) == "" {
			return fmt.Errorf("tags must not be blank")
		}
		if utf8.RuneCountInString(tag) > MaxTagLength {
			return fmt.Errorf("tag %q must not exceed %d characters", tag, MaxTagLength)
		}
	}
	return nil
}
