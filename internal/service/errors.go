package service

import (
	"errors"
	"fmt"

	"fitcoach/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	// ErrNotFound means a referenced session, plan or template does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidSchedule means a session has no parseable date and time.
	ErrInvalidSchedule = errors.New("session has no valid scheduled date and time")
	// ErrConflict means the requested transition is illegal from the current
	// status, or the session changed while the request was in flight.
	ErrConflict = errors.New("session state conflict")
	// ErrInvalidCompletion means the completion payload failed validation.
	ErrInvalidCompletion = errors.New("invalid completion data")
	// ErrExportUnavailable means no object storage is configured for calendar exports.
	ErrExportUnavailable = errors.New("calendar export is not configured")
)

// translateRepoError maps repository sentinels onto service errors and leaves
// everything else (transient store failures) untouched.
func translateRepoError(err error, what string, id primitive.ObjectID) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("%w: %s %s", ErrNotFound, what, id.Hex())
	case errors.Is(err, repository.ErrConflict):
		return fmt.Errorf("%w: %s %s was modified concurrently", ErrConflict, what, id.Hex())
	default:
		return err
	}
}
