package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"afisha/internal/model"
)

// CatalogRepository handles persistence for users and categories.
type CatalogRepository struct {
	db *pgxpool.Pool
}

// NewCatalogRepository constructs a CatalogRepository.
func NewCatalogRepository(db *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// CreateUser inserts a user. Email addresses are unique.
func (r *CatalogRepository) CreateUser(ctx context.Context, name, email string) (*model.User, error) {
	user := &model.User{Name: name, Email: email}
	err := r.db.QueryRow(ctx,
		`INSERT INTO users (name, email) VALUES ($1, $2) RETURNING id`, name, email,
	).Scan(&user.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: user email %s", model.ErrAlreadyExists, email)
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}

// ListUsers returns users by id set, or all users when the set is empty.
func (r *CatalogRepository) ListUsers(ctx context.Context, ids []int64) ([]model.User, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if len(ids) > 0 {
		rows, err = r.db.Query(ctx,
			`SELECT id, name, email FROM users WHERE id = ANY($1) ORDER BY id`, ids)
	} else {
		rows, err = r.db.Query(ctx,
			`SELECT id, name, email FROM users ORDER BY id`)
	}
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// DeleteUser removes a user by id.
func (r *CatalogRepository) DeleteUser(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user %d: %w", id, model.ErrNotFound)
	}
	return nil
}

// CreateCategory inserts a category. Names are unique.
func (r *CatalogRepository) CreateCategory(ctx context.Context, name string) (*model.Category, error) {
	category := &model.Category{Name: name}
	err := r.db.QueryRow(ctx,
		`INSERT INTO categories (name) VALUES ($1) RETURNING id`, name,
	).Scan(&category.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: category %s", model.ErrAlreadyExists, name)
		}
		return nil, fmt.Errorf("insert category: %w", err)
	}
	return category, nil
}

// GetCategory returns a category by id.
func (r *CatalogRepository) GetCategory(ctx context.Context, id int64) (*model.Category, error) {
	return getCategory(ctx, r.db, id)
}

// ListCategories returns all categories.
func (r *CatalogRepository) ListCategories(ctx context.Context) ([]model.Category, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name FROM categories ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// UpdateCategory renames a category.
func (r *CatalogRepository) UpdateCategory(ctx context.Context, id int64, name string) (*model.Category, error) {
	tag, err := r.db.Exec(ctx, `UPDATE categories SET name = $2 WHERE id = $1`, id, name)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: category %s", model.ErrAlreadyExists, name)
		}
		return nil, fmt.Errorf("update category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("category %d: %w", id, model.ErrNotFound)
	}
	return &model.Category{ID: id, Name: name}, nil
}

// DeleteCategory removes a category. Deletion refuses while any event still
// references it.
func (r *CatalogRepository) DeleteCategory(ctx context.Context, id int64) (err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	category, err := getCategory(ctx, tx, id)
	if err != nil {
		return err
	}
	var events int64
	err = tx.QueryRow(ctx, `SELECT COUNT(*) FROM events WHERE category_id = $1`, id).Scan(&events)
	if err != nil {
		return fmt.Errorf("count events in category: %w", err)
	}
	if events > 0 {
		return fmt.Errorf("%w: category %s", model.ErrCategoryNotEmpty, category.Name)
	}
	if _, err = tx.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
