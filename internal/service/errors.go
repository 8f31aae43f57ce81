package service

import (
	"errors"
	"fmt"

	"github.com/amrixahmad/questionsmith/internal/store"
)

var (
	ErrNotFound         = errors.New("resource not found")
	ErrForbidden        = errors.New("forbidden")
	ErrNotPublished     = errors.New("quiz is not published")
	ErrAlreadySubmitted = errors.New("attempt already submitted")
	ErrInvalidInput     = errors.New("invalid input")
	ErrAttemptLimit     = errors.New("maximum attempts reached")
)

// invalidInput marks err as a client error while keeping its message.
func invalidInput(err error) error {
	return fmt.Errorf("%w: %w", ErrInvalidInput, err)
}

// fromStore translates repository sentinels to service sentinels.
func fromStore(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	default:
		return fmt.Errorf("%s: %w", what, err)
	}
}
