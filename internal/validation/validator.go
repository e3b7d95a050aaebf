package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/mediguide-api/internal/models"
)

var (
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	usernameRegex = regexp.MustCompile(`^[\w.@+-]+$`)
)

const (
	maxUsernameLength = 150
	maxNicknameLength = 30
)

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// ValidateRegister validates a sign-up request
func ValidateRegister(req *models.RegisterRequest) []ValidationError {
	var errors []ValidationError

	// Validate username
	if req.Username == "" {
		errors = append(errors, ValidationError{Field: "username", Message: "username is required"})
	} else if len(req.Username) > maxUsernameLength || !usernameRegex.MatchString(req.Username) {
		errors = append(errors, ValidationError{
			Field:   "username",
			Message: fmt.Sprintf("username must be at most %d letters, digits or @.+-_", maxUsernameLength),
			Value:   req.Username,
		})
	}

	// Validate password
	if utf8.RuneCountInString(req.Password) < models.MinPasswordLength {
		errors = append(errors, ValidationError{
			Field:   "password",
			Message: fmt.Sprintf("password must be at least %d characters", models.MinPasswordLength),
		})
	}

	// Email is optional
	if req.Email != "" && !emailRegex.MatchString(req.Email) {
		errors = append(errors, ValidationError{Field: "email", Message: "invalid email format", Value: req.Email})
	}

	// Validate nickname
	nickname := strings.TrimSpace(req.Nickname)
	if nickname == "" {
		errors = append(errors, ValidationError{Field: "nickname", Message: "nickname is required"})
	} else if utf8.RuneCountInString(nickname) > maxNicknameLength {
		errors = append(errors, ValidationError{
			Field:   "nickname",
			Message: fmt.Sprintf("nickname exceeds maximum of %d characters", maxNicknameLength),
			Value:   req.Nickname,
		})
	}

	return errors
}

// ValidateComment validates a drug comment
func ValidateComment(input *models.CommentInput) []ValidationError {
	var errors []ValidationError

	content := strings.TrimSpace(input.Content)
	if content == "" {
		errors = append(errors, ValidationError{Field: "content", Message: "content is required"})
	} else if n := utf8.RuneCountInString(content); n > models.MaxCommentLength {
		errors = append(errors, ValidationError{
			Field:   "content",
			Message: fmt.Sprintf("content exceeds maximum of %d characters (has %d)", models.MaxCommentLength, n),
		})
	}

	if input.Rating != nil && (*input.Rating < models.MinRating || *input.Rating > models.MaxRating) {
		errors = append(errors, ValidationError{
			Field:   "rating",
			Message: fmt.Sprintf("rating must be between %d and %d", models.MinRating, models.MaxRating),
			Value:   *input.Rating,
		})
	}

	return errors
}

// IsValidReactionKind reports whether kind is in the closed reaction set
func IsValidReactionKind(kind string) bool {
	return models.ValidReactionKinds[kind]
}

// IsValidUUID checks if a string is a valid UUID
func IsValidUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
