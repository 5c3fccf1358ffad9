// Package server provides the HTTP REST API for the mock interview engine.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/interview-agent/internal/rubric"
	"github.com/jonathan/interview-agent/internal/session"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		validation     *ErrValidation
		indexRange     *rubric.IndexOutOfRangeError
		compNotFound   *rubric.CompetencyNotFoundError
		emptyRubric    *rubric.EmptyRubricError
		sessNotFound   *session.SessionNotFoundError
		invalidState   *session.InvalidStateError
		notCompleted   *session.NotCompletedError
		sessionBusy    *session.SessionBusyError
		datasetMissing *rubric.DatasetNotFoundError
	)

	switch {
	case errors.As(err, &validation),
		errors.As(err, &indexRange),
		errors.As(err, &compNotFound),
		errors.As(err, &emptyRubric):
		return http.StatusBadRequest
	case errors.As(err, &sessNotFound):
		return http.StatusNotFound
	case errors.As(err, &invalidState), errors.As(err, &notCompleted):
		return http.StatusConflict
	case errors.As(err, &sessionBusy):
		return http.StatusTooManyRequests
	case errors.As(err, &datasetMissing):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
