package model

import (
	"errors"
	"net/http"

	"tvshow-catalog/pkg/pagination"
)

var (
	// Not found
	ErrShowNotFound = errors.New("tv show not found")

	// Validation
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrInvalidShowID       = errors.New("tv show id must be a positive integer")
	ErrInvalidPremiereDate = errors.New("premiere date is not a valid date")
)

// ToErrorCode converts error to API error code
func ToErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrShowNotFound):
		return "SHOW_NOT_FOUND"
	case errors.Is(err, ErrInvalidShowID):
		return "INVALID_ID"
	case errors.Is(err, ErrInvalidPremiereDate):
		return "INVALID_PREMIERE_DATE"
	case errors.Is(err, pagination.ErrInvalidPageNumber):
		return "INVALID_PAGE_NUMBER"
	case errors.Is(err, ErrInvalidArgument):
		return "INVALID_ARGUMENT"
	default:
		return "INTERNAL_ERROR"
	}
}

// ToHTTPStatus converts error to HTTP status code.
// Page overflow (pagination.ErrPageOverflow) and anything unknown are 500.
func ToHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrShowNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidShowID),
		errors.Is(err, ErrInvalidPremiereDate),
		errors.Is(err, ErrInvalidArgument),
		errors.Is(err, pagination.ErrInvalidPageNumber):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
