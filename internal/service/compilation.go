package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"afisha/internal/model"
	"afisha/internal/repository"
)

// CompilationService owns curated event compilations.
type CompilationService struct {
	compilations *repository.CompilationRepository
	log          *slog.Logger
}

// NewCompilationService constructs a CompilationService.
func NewCompilationService(compilations *repository.CompilationRepository, log *slog.Logger) *CompilationService {
	return &CompilationService{compilations: compilations, log: log}
}

// Create stores a new compilation.
func (s *CompilationService) Create(ctx context.Context, nc model.NewCompilation) (*model.Compilation, error) {
	nc.Title = strings.TrimSpace(nc.Title)
	if nc.Title == "" {
		return nil, fmt.Errorf("%w: compilation title is required", model.ErrInvalidInput)
	}
	compilation, err := s.compilations.Create(ctx, nc)
	if err != nil {
		return nil, err
	}
	s.log.Info("compilation created", "compilation_id", compilation.ID, "title", compilation.Title)
	return compilation, nil
}

// Get returns a compilation by id.
func (s *CompilationService) Get(ctx context.Context, id int64) (*model.Compilation, error) {
	return s.compilations.Get(ctx, id)
}

// List returns compilations, optionally filtered by the pinned flag.
func (s *CompilationService) List(ctx context.Context, pinned *bool) ([]model.Compilation, error) {
	return s.compilations.List(ctx, pinned)
}

// Update applies a partial compilation patch.
func (s *CompilationService) Update(ctx context.Context, id int64, p model.CompilationPatch) (*model.Compilation, error) {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return nil, fmt.Errorf("%w: compilation title cannot be empty", model.ErrInvalidInput)
	}
	compilation, err := s.compilations.Update(ctx, id, p)
	if err != nil {
		return nil, err
	}
	s.log.Info("compilation updated", "compilation_id", id)
	return compilation, nil
}

// Delete removes a compilation.
func (s *CompilationService) Delete(ctx context.Context, id int64) error {
	if err := s.compilations.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("compilation deleted", "compilation_id", id)
	return nil
}
