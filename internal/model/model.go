// Package model defines the core domain types for the event platform:
// events with their moderation state machine, participation requests with
// their admission state machine, and the catalog entities both depend on.
package model

import "fmt"

// EventState is the moderation state of an event.
type EventState string

const (
	EventPending   EventState = "PENDING"
	EventPublished EventState = "PUBLISHED"
	EventCanceled  EventState = "CANCELED"
	EventRejected  EventState = "REJECTED"
)

// ParseEventState parses a state keyword from free-text input.
func ParseEventState(s string) (EventState, error) {
	switch EventState(s) {
	case EventPending, EventPublished, EventCanceled, EventRejected:
		return EventState(s), nil
	}
	return "", fmt.Errorf("%w: unknown event state %q", ErrBadStatus, s)
}

// RequestStatus is the state of a participation request.
type RequestStatus string

const (
	RequestPending   RequestStatus = "PENDING"
	RequestConfirmed RequestStatus = "CONFIRMED"
	RequestRejected  RequestStatus = "REJECTED"
	RequestCanceled  RequestStatus = "CANCELED"
)

// ParseRequestStatus parses a status keyword from free-text input.
func ParseRequestStatus(s string) (RequestStatus, error) {
	switch RequestStatus(s) {
	case RequestPending, RequestConfirmed, RequestRejected, RequestCanceled:
		return RequestStatus(s), nil
	}
	return "", fmt.Errorf("%w: unknown request status %q", ErrBadStatus, s)
}

// State actions accepted in event patches. Authors may send an event to
// review or cancel it; admins publish or reject. Each role has a closed set.
const (
	ActionSendToReview = "SEND_TO_REVIEW"
	ActionCancelReview = "CANCEL_REVIEW"
	ActionPublishEvent = "PUBLISH_EVENT"
	ActionRejectEvent  = "REJECT_EVENT"
)

// EventSort is the ordering of public search results.
type EventSort string

const (
	SortEventDate EventSort = "EVENT_DATE"
	SortViews     EventSort = "VIEWS"
)

// ParseEventSort parses a sort keyword, defaulting to event date when empty.
func ParseEventSort(s string) (EventSort, error) {
	if s == "" {
		return SortEventDate, nil
	}
	switch EventSort(s) {
	case SortEventDate, SortViews:
		return EventSort(s), nil
	}
	return "", fmt.Errorf("%w: unknown sort %q", ErrBadSort, s)
}

// User is a registered platform user.
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Category classifies events.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Location is a geographic point, deduplicated by exact coordinates.
type Location struct {
	ID  int64   `json:"-"`
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Event is a listing created by an initiator and moderated by admins.
type Event struct {
	ID                int64      `json:"id"`
	Title             string     `json:"title"`
	Annotation        string     `json:"annotation"`
	Description       string     `json:"description"`
	Category          Category   `json:"category"`
	Initiator         User       `json:"initiator"`
	Location          Location   `json:"location"`
	EventDate         DateTime   `json:"event_date"`
	CreatedOn         DateTime   `json:"created_on"`
	PublishedOn       *DateTime  `json:"published_on,omitempty"`
	Paid              bool       `json:"paid"`
	ParticipantLimit  int64      `json:"participant_limit"`
	RequestModeration bool       `json:"request_moderation"`
	ConfirmedRequests int64      `json:"confirmed_requests"`
	Views             int64      `json:"views"`
	State             EventState `json:"state"`
}

// IsFull reports whether the event has reached its participant limit.
// A limit of zero means unlimited.
func (e *Event) IsFull() bool {
	return e.ParticipantLimit != 0 && e.ConfirmedRequests >= e.ParticipantLimit
}

// NewRequestStatus returns the status a fresh participation request receives:
// PENDING when the event moderates requests, CONFIRMED otherwise.
func (e *Event) NewRequestStatus() RequestStatus {
	if e.RequestModeration {
		return RequestPending
	}
	return RequestConfirmed
}

// Request is a user's participation request for an event.
type Request struct {
	ID          int64         `json:"id"`
	EventID     int64         `json:"event_id"`
	RequesterID int64         `json:"requester_id"`
	Status      RequestStatus `json:"status"`
	Created     DateTime      `json:"created"`
}

// Cancel moves the request to CANCELED. Only pending and confirmed requests
// may be canceled; moderation outcomes other than CONFIRMED are final.
// Canceling a confirmed request does not free event capacity.
func (r *Request) Cancel() error {
	switch r.Status {
	case RequestPending, RequestConfirmed:
		r.Status = RequestCanceled
		return nil
	default:
		return fmt.Errorf("%w: request %d is %s", ErrCancelFinalized, r.ID, r.Status)
	}
}

// Compilation is an admin-curated set of events.
type Compilation struct {
	ID     int64   `json:"id"`
	Title  string  `json:"title"`
	Pinned bool    `json:"pinned"`
	Events []Event `json:"events"`
}

// Comment is a user comment on a published event.
type Comment struct {
	ID       int64     `json:"id"`
	EventID  int64     `json:"event_id"`
	AuthorID int64     `json:"author_id"`
	Text     string    `json:"text"`
	Created  DateTime  `json:"created"`
	Edited   *DateTime `json:"edited,omitempty"`
}

// NewEvent carries the data for event creation.
type NewEvent struct {
	Title             string   `json:"title"`
	Annotation        string   `json:"annotation"`
	Description       string   `json:"description"`
	CategoryID        int64    `json:"category_id"`
	Location          Location `json:"location"`
	EventDate         DateTime `json:"event_date"`
	Paid              bool     `json:"paid"`
	ParticipantLimit  int64    `json:"participant_limit"`
	RequestModeration *bool    `json:"request_moderation"`
}

// Moderation reports whether new requests require explicit confirmation,
// defaulting to true when the field was not supplied.
func (n NewEvent) Moderation() bool {
	if n.RequestModeration == nil {
		return true
	}
	return *n.RequestModeration
}

// NewCompilation carries the data for compilation creation.
type NewCompilation struct {
	Title  string  `json:"title"`
	Pinned bool    `json:"pinned"`
	Events []int64 `json:"events"`
}

// CompilationPatch is a partial update of a compilation.
type CompilationPatch struct {
	Title  *string  `json:"title"`
	Pinned *bool    `json:"pinned"`
	Events *[]int64 `json:"events"`
}

// AdminEventFilter restricts the admin event listing.
type AdminEventFilter struct {
	Users      []int64
	States     []EventState
	Categories []int64
	RangeStart *DateTime
	RangeEnd   *DateTime
}

// PublicEventFilter restricts the public event search. Only published events
// are ever returned; an empty Text matches everything.
type PublicEventFilter struct {
	Text          string
	Categories    []int64
	Paid          *bool
	RangeStart    *DateTime
	RangeEnd      *DateTime
	OnlyAvailable bool
	Sort          EventSort
}

// ErrorResponse is the standard JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}

// AdmissionResult reports the disjoint outcome sets of a moderation batch.
type AdmissionResult struct {
	Confirmed []Request `json:"confirmed_requests"`
	Rejected  []Request `json:"rejected_requests"`
}
