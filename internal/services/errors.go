// Package services defines the business logic for SOS intake and the
// dashboard read paths. This file centralizes common service-level error
// values so that they can be consistently returned by service methods and
// checked by callers.
//
// These errors are intended for internal use by the service layer; translation
// into user-facing messages or HTTP status codes is performed at the handler
// layer.
package services

import "errors"

var (
	// ErrMissingFields is returned when a submission has an empty or
	// whitespace-only text or location. Validation failures are distinct
	// from classifier degradation: no gateway call is made.
	ErrMissingFields = errors.New("missing text or location")

	// ErrTicketNotFound indicates the requested ticket does not exist, or a
	// close did not modify anything (missing id or already closed).
	ErrTicketNotFound = errors.New("ticket not found")

	// ErrEmptyQuery is returned when a search request has no usable query.
	ErrEmptyQuery = errors.New("search query is empty")
)
