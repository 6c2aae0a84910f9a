package model

import "errors"

// Domain errors. Handlers map these onto HTTP statuses; everything else is
// treated as an internal error.
var (
	// ErrNotFound is returned when a referenced entity does not exist.
	ErrNotFound = errors.New("not found")

	// Conflicts: the operation is well-formed but the business rules forbid it.
	ErrEventFull           = errors.New("participant limit is reached")
	ErrDuplicateRequest    = errors.New("request already exists")
	ErrSelfRequest         = errors.New("initiator cannot request own event")
	ErrNotPublished        = errors.New("event is not published")
	ErrWrongState          = errors.New("event is in the wrong state")
	ErrEditPublished       = errors.New("published events cannot be edited")
	ErrTooLateToPublish    = errors.New("too late to publish")
	ErrBadEventDate        = errors.New("event date is too soon")
	ErrLimitBelowConfirmed = errors.New("participant limit below confirmed requests")
	ErrRequestNotPending   = errors.New("request is not pending")
	ErrNotModeratable      = errors.New("target status must be CONFIRMED or REJECTED")
	ErrCancelFinalized     = errors.New("request can no longer be canceled")
	ErrCategoryNotEmpty    = errors.New("category still has events")
	ErrAlreadyExists       = errors.New("already exists")

	// Ownership violations.
	ErrNotInitiator = errors.New("user is not the event initiator")
	ErrNotRequester = errors.New("user is not the requester")
	ErrNotAuthor    = errors.New("user is not the comment author")

	// Malformed input.
	ErrInvalidInput   = errors.New("invalid input")
	ErrBadStateAction = errors.New("unknown state action")
	ErrBadStatus      = errors.New("unknown status")
	ErrBadSort        = errors.New("unknown sort")
	ErrBadDateTime    = errors.New("malformed timestamp")
	ErrBadDateRange   = errors.New("range start is after range end")
	ErrPastDate       = errors.New("event date is in the past")
)
