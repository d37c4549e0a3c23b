package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/codigoteca/internal/model"
	"github.com/sakif/codigoteca/internal/repository"
)

// CodigoCategoriaService maintains the code ↔ category association.
//
// Any authenticated caller may link or unlink any pair; there is no
// ownership check on either side.
type CodigoCategoriaService struct {
	links  repository.CodigoCategoriaRepository
	logger *slog.Logger
}

func NewCodigoCategoriaService(links repository.CodigoCategoriaRepository, logger *slog.Logger) *CodigoCategoriaService {
	return &CodigoCategoriaService{links: links, logger: logger}
}

// Link is idempotent. A code or category that does not exist surfaces as a
// storage error.
func (s *CodigoCategoriaService) Link(ctx context.Context, codigoID, categoryID int64) error {
	if err := validatePair(codigoID, categoryID); err != nil {
		return err
	}
	if err := s.links.LinkCategory(ctx, codigoID, categoryID); err != nil {
		s.logger.Error("failed to link category",
			slog.Int64("codigoID", codigoID),
			slog.Int64("categoryID", categoryID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("service: linking codigo %d to category %d: %w", codigoID, categoryID, err)
	}

	s.logger.Info("category linked", slog.Int64("codigoID", codigoID), slog.Int64("categoryID", categoryID))
	return nil
}

// Unlink is idempotent.
func (s *CodigoCategoriaService) Unlink(ctx context.Context, codigoID, categoryID int64) error {
	if err := validatePair(codigoID, categoryID); err != nil {
		return err
	}
	if err := s.links.UnlinkCategory(ctx, codigoID, categoryID); err != nil {
		return fmt.Errorf("service: unlinking codigo %d from category %d: %w", codigoID, categoryID, err)
	}

	s.logger.Info("category unlinked", slog.Int64("codigoID", codigoID), slog.Int64("categoryID", categoryID))
	return nil
}

func (s *CodigoCategoriaService) CategoriesOf(ctx context.Context, codigoID int64) ([]model.Category, error) {
	if err := requirePositive("codigoId", codigoID); err != nil {
		return nil, err
	}
	categories, err := s.links.ListCategoriesByCodigo(ctx, codigoID)
	if err != nil {
		return nil, fmt.Errorf("service: listing categories of codigo %d: %w", codigoID, err)
	}
	return categories, nil
}

func (s *CodigoCategoriaService) CodesOf(ctx context.Context, categoryID int64) ([]model.Codigo, error) {
	if err := requirePositive("categoriaId", categoryID); err != nil {
		return nil, err
	}
	codigos, err := s.links.ListCodigosByCategory(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("service: listing codigos of category %d: %w", categoryID, err)
	}
	return codigos, nil
}

func validatePair(codigoID, categoryID int64) error {
	if err := requirePositive("codigoId", codigoID); err != nil {
		return err
	}
	return requirePositive("categoriaId", categoryID)
}
