package model

import (
	"fmt"
	"time"
)

// Lead times required between "now" and an event's date.
const (
	// MinLeadTime applies at creation and at any author edit.
	MinLeadTime = 2 * time.Hour
	// MinPublishLeadTime applies when an admin publishes.
	MinPublishLeadTime = time.Hour
)

// EventPatch is a partial update of an event. Nil fields are left untouched.
// CategoryID and Location are resolved by the storage layer before the patch
// is applied; the apply functions handle every other field and the state
// action keyword.
type EventPatch struct {
	Title             *string   `json:"title"`
	Annotation        *string   `json:"annotation"`
	Description       *string   `json:"description"`
	CategoryID        *int64    `json:"category_id"`
	Location          *Location `json:"location"`
	EventDate         *DateTime `json:"event_date"`
	Paid              *bool     `json:"paid"`
	ParticipantLimit  *int64    `json:"participant_limit"`
	RequestModeration *bool     `json:"request_moderation"`
	StateAction       *string   `json:"state_action"`
}

// ValidateEventDate checks the creation/author-edit lead time.
func ValidateEventDate(d DateTime, now time.Time) error {
	if d.Before(now.Add(MinLeadTime)) {
		return fmt.Errorf("%w: %s is less than %s ahead", ErrBadEventDate, d, MinLeadTime)
	}
	return nil
}

// ApplyAuthorPatch applies an initiator's patch to the event. All guards are
// checked before any field is assigned, so a failed patch leaves the event
// untouched. The caller verifies ownership and resolves references.
func (e *Event) ApplyAuthorPatch(p EventPatch, now time.Time) error {
	if e.State == EventPublished {
		return fmt.Errorf("%w: event %d", ErrEditPublished, e.ID)
	}
	if p.EventDate != nil {
		if err := ValidateEventDate(*p.EventDate, now); err != nil {
			return err
		}
	}
	if err := e.checkLimitPatch(p); err != nil {
		return err
	}
	var next EventState
	if p.StateAction != nil {
		switch *p.StateAction {
		case ActionSendToReview:
			next = EventPending
		case ActionCancelReview:
			next = EventCanceled
		default:
			return fmt.Errorf("%w: %q", ErrBadStateAction, *p.StateAction)
		}
	}

	e.assign(p)
	if next != "" {
		e.State = next
	}
	return nil
}

// ApplyAdminPatch applies an admin's patch. Publishing is allowed only from
// PENDING and only while the (possibly patched) event date is at least one
// hour ahead; a published event cannot be rejected. A patched date may be any
// future instant.
func (e *Event) ApplyAdminPatch(p EventPatch, now time.Time) error {
	if p.EventDate != nil && p.EventDate.Before(now) {
		return fmt.Errorf("%w: %s", ErrPastDate, *p.EventDate)
	}
	if err := e.checkLimitPatch(p); err != nil {
		return err
	}

	eventDate := e.EventDate
	if p.EventDate != nil {
		eventDate = *p.EventDate
	}
	var next EventState
	var publishedOn *DateTime
	if p.StateAction != nil {
		switch *p.StateAction {
		case ActionPublishEvent:
			if e.State != EventPending {
				return fmt.Errorf("%w: cannot publish event in state %s", ErrWrongState, e.State)
			}
			if eventDate.Before(now.Add(MinPublishLeadTime)) {
				return fmt.Errorf("%w: event date %s", ErrTooLateToPublish, eventDate)
			}
			next = EventPublished
			on := NewDateTime(now)
			publishedOn = &on
		case ActionRejectEvent:
			if e.State == EventPublished {
				return fmt.Errorf("%w: cannot reject a published event", ErrWrongState)
			}
			next = EventRejected
		default:
			return fmt.Errorf("%w: %q", ErrBadStateAction, *p.StateAction)
		}
	}

	e.assign(p)
	if next != "" {
		e.State = next
	}
	if publishedOn != nil {
		e.PublishedOn = publishedOn
	}
	return nil
}

func (e *Event) checkLimitPatch(p EventPatch) error {
	if p.ParticipantLimit != nil && e.ConfirmedRequests > *p.ParticipantLimit {
		return fmt.Errorf("%w: limit %d, confirmed %d",
			ErrLimitBelowConfirmed, *p.ParticipantLimit, e.ConfirmedRequests)
	}
	return nil
}

// assign overwrites every provided scalar field. State transitions and
// reference resolution are handled by the callers.
func (e *Event) assign(p EventPatch) {
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Annotation != nil {
		e.Annotation = *p.Annotation
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.EventDate != nil {
		e.EventDate = *p.EventDate
	}
	if p.Paid != nil {
		e.Paid = *p.Paid
	}
	if p.ParticipantLimit != nil {
		e.ParticipantLimit = *p.ParticipantLimit
	}
	if p.RequestModeration != nil {
		e.RequestModeration = *p.RequestModeration
	}
}
