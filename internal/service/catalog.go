package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"afisha/internal/model"
	"afisha/internal/repository"
)

// CatalogService owns user and category administration.
type CatalogService struct {
	catalog *repository.CatalogRepository
	log     *slog.Logger
}

// NewCatalogService constructs a CatalogService.
func NewCatalogService(catalog *repository.CatalogRepository, log *slog.Logger) *CatalogService {
	return &CatalogService{catalog: catalog, log: log}
}

// CreateUser registers a new user.
func (s *CatalogService) CreateUser(ctx context.Context, name, email string) (*model.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(strings.ToLower(email))
	if name == "" {
		return nil, fmt.Errorf("%w: user name is required", model.ErrInvalidInput)
	}
	if !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: malformed email", model.ErrInvalidInput)
	}
	user, err := s.catalog.CreateUser(ctx, name, email)
	if err != nil {
		return nil, err
	}
	s.log.Info("user created", "user_id", user.ID)
	return user, nil
}

// ListUsers returns users by id set, or all users when the set is empty.
func (s *CatalogService) ListUsers(ctx context.Context, ids []int64) ([]model.User, error) {
	return s.catalog.ListUsers(ctx, ids)
}

// DeleteUser removes a user.
func (s *CatalogService) DeleteUser(ctx context.Context, id int64) error {
	if err := s.catalog.DeleteUser(ctx, id); err != nil {
		return err
	}
	s.log.Info("user deleted", "user_id", id)
	return nil
}

// CreateCategory adds a new event category.
func (s *CatalogService) CreateCategory(ctx context.Context, name string) (*model.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: category name is required", model.ErrInvalidInput)
	}
	category, err := s.catalog.CreateCategory(ctx, name)
	if err != nil {
		return nil, err
	}
	s.log.Info("category created", "category_id", category.ID, "name", name)
	return category, nil
}

// GetCategory returns a category by id.
func (s *CatalogService) GetCategory(ctx context.Context, id int64) (*model.Category, error) {
	return s.catalog.GetCategory(ctx, id)
}

// ListCategories returns all categories.
func (s *CatalogService) ListCategories(ctx context.Context) ([]model.Category, error) {
	return s.catalog.ListCategories(ctx)
}

// UpdateCategory renames a category.
func (s *CatalogService) UpdateCategory(ctx context.Context, id int64, name string) (*model.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: category name is required", model.ErrInvalidInput)
	}
	return s.catalog.UpdateCategory(ctx, id, name)
}

// DeleteCategory removes a category unless events still reference it.
func (s *CatalogService) DeleteCategory(ctx context.Context, id int64) error {
	if err := s.catalog.DeleteCategory(ctx, id); err != nil {
		return err
	}
	s.log.Info("category deleted", "category_id", id)
	return nil
}
