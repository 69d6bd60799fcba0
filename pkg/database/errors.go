package database

import (
	"strings"

	"github.com/lib/pq"
	"github.com/mrzscan/mrzscan-backend/pkg/errors"
)

// MapPQError converts a PostgreSQL error to an AppError with meaningful messages.
// Returns nil if the error is not a pq.Error or has no specific mapping.
func MapPQError(err error) *errors.AppError {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return nil
	}

	switch pqErr.Code {
	// Check constraint violation
	case "23514":
		return mapCheckConstraint(pqErr)

	// Unique constraint violation
	case "23505":
		if strings.Contains(pqErr.Constraint, "job_id") {
			return errors.Conflict("an audit entry for this scan job already exists")
		}
		return errors.Conflict("a record with these values already exists")

	// Not null violation
	case "23502":
		col := pqErr.Column
		if col == "" {
			col = "required field"
		}
		return errors.Validation(map[string]string{
			col: "must not be empty",
		})

	default:
		return nil
	}
}

// mapCheckConstraint maps specific CHECK constraint names to user-friendly messages.
func mapCheckConstraint(pqErr *pq.Error) *errors.AppError {
	switch constraint := pqErr.Constraint; {
	case strings.Contains(constraint, "valid_score_range"):
		return errors.Validation(map[string]string{
			"valid_score": "must be between 0 and 100",
		})
	case strings.Contains(constraint, "status_valid"):
		return errors.Validation(map[string]string{
			"status": "must be one of: completed, failed",
		})
	default:
		return errors.BadRequest("data validation failed: " + constraint)
	}
}
