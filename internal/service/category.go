package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/codigoteca/internal/apperror"
	"github.com/sakif/codigoteca/internal/model"
	"github.com/sakif/codigoteca/internal/repository"
)

const (
	MaxCategoryNameLength        = 100
	MaxCategoryDescriptionLength = 500
)

// CategoryInput carries the fields of a category. All three are required on
// both create and update.
type CategoryInput struct {
	Name        *string
	Description *string
	State       *string
}

// CategoryService handles the category taxonomy. Categories have no owner;
// any authenticated caller may manage them.
type CategoryService struct {
	categories repository.CategoryRepository
	logger     *slog.Logger
}

func NewCategoryService(categories repository.CategoryRepository, logger *slog.Logger) *CategoryService {
	return &CategoryService{categories: categories, logger: logger}
}

func (s *CategoryService) List(ctx context.Context) ([]model.Category, error) {
	categories, err := s.categories.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: listing categories: %w", err)
	}
	return categories, nil
}

func (s *CategoryService) GetByID(ctx context.Context, id int64) (*model.Category, error) {
	c, err := s.categories.GetCategoryByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service: loading category %d: %w", id, err)
	}
	return c, nil
}

func (s *CategoryService) Create(ctx context.Context, in CategoryInput) (*model.Category, error) {
	c, err := validateCategory(in)
	if err != nil {
		return nil, err
	}
	if err := s.categories.CreateCategory(ctx, c); err != nil {
		return nil, fmt.Errorf("service: creating category: %w", err)
	}

	s.logger.Info("category created", slog.Int64("id", c.ID), slog.String("nombre", c.Name))
	return c, nil
}

// Update validates every field, estado included, before touching storage.
func (s *CategoryService) Update(ctx context.Context, id int64, in CategoryInput) (*model.Category, error) {
	if err := requirePositive("id", id); err != nil {
		return nil, err
	}
	c, err := validateCategory(in)
	if err != nil {
		return nil, err
	}
	if _, err := s.GetByID(ctx, id); err != nil {
		return nil, err
	}

	c.ID = id
	if err := s.categories.UpdateCategory(ctx, c); err != nil {
		return nil, fmt.Errorf("service: updating category %d: %w", id, err)
	}

	s.logger.Info("category updated", slog.Int64("id", id), slog.String("estado", string(c.State)))
	return c, nil
}

func (s *CategoryService) Delete(ctx context.Context, id int64) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}

	deleted, err := s.categories.DeleteCategory(ctx, id)
	if err != nil {
		return fmt.Errorf("service: deleting category %d: %w", id, err)
	}
	if !deleted {
		return apperror.DeleteFailed("category", id)
	}

	s.logger.Info("category deleted", slog.Int64("id", id))
	return nil
}

func validateCategory(in CategoryInput) (*model.Category, error) {
	name, err := requiredText("nombre", in.Name, MaxCategoryNameLength)
	if err != nil {
		return nil, err
	}
	desc, err := requiredText("descripcion", in.Description, MaxCategoryDescriptionLength)
	if err != nil {
		return nil, err
	}
	stateText, err := requiredText("estado", in.State, MaxCategoryNameLength)
	if err != nil {
		return nil, err
	}
	state := model.CategoryState(stateText)
	if !state.Valid() {
		return nil, apperror.ValidationFailed("estado", "estado must be 'activo' or 'inactivo'")
	}
	return &model.Category{Name: name, Description: desc, State: state}, nil
}
