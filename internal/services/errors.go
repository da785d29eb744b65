package services

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput wraps every validation failure returned by the services.
	ErrInvalidInput  = errors.New("invalid input")
	ErrGoalNotActive = errors.New("goal is not active")
)

func invalid(err error) error {
	return fmt.Errorf("%w: %w", ErrInvalidInput, err)
}
