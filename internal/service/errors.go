package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/mediguide-api/internal/llm"
	"github.com/mediguide-api/internal/validation"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidReaction    = errors.New("reaction must be one of: helpful, unhelpful, or null")
	ErrInvalidOrder       = errors.New("order must be one of: default, helpful, rating")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnsupportedFormat  = errors.New("unsupported format")
)

// ConflictError reports a unique field that is already taken
type ConflictError struct {
	Field string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s already exists", e.Field)
}

// ValidationErrors carries field errors for a rejected write
type ValidationErrors struct {
	Errors []validation.ValidationError
}

func (e *ValidationErrors) Error() string {
	return fmt.Sprintf("validation failed: %d error(s)", len(e.Errors))
}

// GenerationKind classifies a failed call to a generation provider
type GenerationKind string

const (
	GenerationTimeout   GenerationKind = "timeout"
	GenerationUpstream  GenerationKind = "upstream"
	GenerationMalformed GenerationKind = "malformed"
)

// GenerationError is returned when an AI provider call fails. Cause is kept
// for logs and never returned to clients.
type GenerationError struct {
	Kind  GenerationKind
	Cause error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed (%s): %v", e.Kind, e.Cause)
}

func (e *GenerationError) Unwrap() error { return e.Cause }

// classifyGeneration maps a provider error to a GenerationError.
// ctx is the deadline-bound context the call ran under.
func classifyGeneration(ctx context.Context, err error) *GenerationError {
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		return &GenerationError{Kind: GenerationTimeout, Cause: err}
	case errors.Is(err, llm.ErrEmptyResponse):
		return &GenerationError{Kind: GenerationMalformed, Cause: err}
	default:
		return &GenerationError{Kind: GenerationUpstream, Cause: err}
	}
}

// IngestionError is returned when the drug information API fails
type IngestionError struct {
	Unauthorized bool
	Cause        error
}

func (e *IngestionError) Error() string {
	return fmt.Sprintf("drug information API failed: %v", e.Cause)
}

func (e *IngestionError) Unwrap() error { return e.Cause }
