package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"afisha/internal/model"
	"afisha/internal/repository"
)

// CommentService owns comments on published events.
type CommentService struct {
	comments *repository.CommentRepository
	log      *slog.Logger
}

// NewCommentService constructs a CommentService.
func NewCommentService(comments *repository.CommentRepository, log *slog.Logger) *CommentService {
	return &CommentService{comments: comments, log: log}
}

// Create posts a comment on a published event.
func (s *CommentService) Create(ctx context.Context, userID, eventID int64, text string) (*model.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: comment text is required", model.ErrInvalidInput)
	}
	comment, err := s.comments.Create(ctx, userID, eventID, text)
	if err != nil {
		return nil, err
	}
	s.log.Info("comment created", "comment_id", comment.ID, "event_id", eventID, "author_id", userID)
	return comment, nil
}

// Update edits the author's own comment.
func (s *CommentService) Update(ctx context.Context, userID, commentID int64, text string) (*model.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: comment text is required", model.ErrInvalidInput)
	}
	return s.comments.Update(ctx, userID, commentID, text)
}

// Delete removes the author's own comment.
func (s *CommentService) Delete(ctx context.Context, userID, commentID int64) error {
	return s.comments.Delete(ctx, userID, commentID)
}

// ListByEvent returns all comments on an event.
func (s *CommentService) ListByEvent(ctx context.Context, eventID int64) ([]model.Comment, error) {
	return s.comments.ListByEvent(ctx, eventID)
}
