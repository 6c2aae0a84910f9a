package service

import (
	"context"
	"log/slog"

	"afisha/internal/model"
)

// RequestStore is the persistence surface the admission service depends on.
type RequestStore interface {
	Create(ctx context.Context, userID, eventID int64) (*model.Request, error)
	Cancel(ctx context.Context, userID, requestID int64) (*model.Request, error)
	Moderate(ctx context.Context, userID, eventID int64, requestIDs []int64, target model.RequestStatus) (*model.AdmissionResult, error)
	ListByRequester(ctx context.Context, userID int64) ([]model.Request, error)
	ListByEvent(ctx context.Context, userID, eventID int64) ([]model.Request, error)
}

// RequestService owns the participation request operations.
type RequestService struct {
	requests RequestStore
	log      *slog.Logger
}

// NewRequestService constructs a RequestService.
func NewRequestService(requests RequestStore, log *slog.Logger) *RequestService {
	return &RequestService{requests: requests, log: log}
}

// Create submits a participation request for an event.
func (s *RequestService) Create(ctx context.Context, userID, eventID int64) (*model.Request, error) {
	request, err := s.requests.Create(ctx, userID, eventID)
	if err != nil {
		return nil, err
	}
	s.log.Info("request created",
		"request_id", request.ID, "event_id", eventID, "requester_id", userID, "status", request.Status)
	return request, nil
}

// Cancel withdraws the user's own request.
func (s *RequestService) Cancel(ctx context.Context, userID, requestID int64) (*model.Request, error) {
	request, err := s.requests.Cancel(ctx, userID, requestID)
	if err != nil {
		return nil, err
	}
	s.log.Info("request canceled", "request_id", requestID, "requester_id", userID)
	return request, nil
}

// Moderate confirms or rejects pending requests on the initiator's behalf.
// The target status keyword is parsed here; CANCELED and PENDING parse but
// are not valid moderation outcomes and conflict downstream.
func (s *RequestService) Moderate(ctx context.Context, userID, eventID int64, requestIDs []int64, status string) (*model.AdmissionResult, error) {
	target, err := model.ParseRequestStatus(status)
	if err != nil {
		return nil, err
	}
	result, err := s.requests.Moderate(ctx, userID, eventID, requestIDs, target)
	if err != nil {
		return nil, err
	}
	if result.Confirmed == nil {
		result.Confirmed = []model.Request{}
	}
	if result.Rejected == nil {
		result.Rejected = []model.Request{}
	}
	s.log.Info("requests moderated", "event_id", eventID,
		"confirmed", len(result.Confirmed), "rejected", len(result.Rejected))
	return result, nil
}

// ListForRequester returns all requests submitted by the user.
func (s *RequestService) ListForRequester(ctx context.Context, userID int64) ([]model.Request, error) {
	return s.requests.ListByRequester(ctx, userID)
}

// ListForEventOwner returns an event's requests for its initiator.
func (s *RequestService) ListForEventOwner(ctx context.Context, userID, eventID int64) ([]model.Request, error) {
	return s.requests.ListByEvent(ctx, userID, eventID)
}
