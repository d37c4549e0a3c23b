package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/codigoteca/internal/apperror"
	"github.com/sakif/codigoteca/internal/authz"
	"github.com/sakif/codigoteca/internal/model"
	"github.com/sakif/codigoteca/internal/repository"
)

const MaxCollectionNameLength = 100

// CollectionInput carries the fields a client may set on a collection.
// A nil pointer means "not provided".
type CollectionInput struct {
	Name        *string
	Description *string
	Visibility  *string
}

// CollectionService handles collections and the snippets inside them.
//
// Reads honour visibility (publica collections are readable by everyone);
// writes always require the owner or an admin.
type CollectionService struct {
	collections repository.CollectionRepository
	items       repository.CollectionItemRepository
	codigos     repository.CodigoRepository
	logger      *slog.Logger
}

func NewCollectionService(
	collections repository.CollectionRepository,
	items repository.CollectionItemRepository,
	codigos repository.CodigoRepository,
	logger *slog.Logger,
) *CollectionService {
	return &CollectionService{
		collections: collections,
		items:       items,
		codigos:     codigos,
		logger:      logger,
	}
}

func (s *CollectionService) ListByUser(ctx context.Context, userID int64) ([]model.Collection, error) {
	collections, err := s.collections.ListCollectionsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service: listing collections of user %d: %w", userID, err)
	}
	return collections, nil
}

// Create stores a new collection owned by ownerID. visibilidad defaults to
// privada.
func (s *CollectionService) Create(ctx context.Context, ownerID int64, in CollectionInput) (*model.Collection, error) {
	name, err := requiredText("nombre", in.Name, MaxCollectionNameLength)
	if err != nil {
		return nil, err
	}
	visibility, err := parseVisibility(in.Visibility, model.VisibilityPrivada)
	if err != nil {
		return nil, err
	}

	col := &model.Collection{
		UserID:      ownerID,
		Name:        name,
		Description: trimmedOrNil(in.Description),
		Visibility:  visibility,
	}
	if err := s.collections.CreateCollection(ctx, col); err != nil {
		s.logger.Error("failed to create collection", slog.Int64("userID", ownerID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("service: creating collection: %w", err)
	}

	s.logger.Info("collection created", slog.Int64("id", col.ID), slog.Int64("userID", ownerID))
	return col, nil
}

// GetByID returns the collection when it is publica, or when actor owns it or
// is an admin.
func (s *CollectionService) GetByID(ctx context.Context, id int64, actor authz.Actor) (*model.Collection, error) {
	col, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.Check(actor, authz.Read, collectionResource(col), "this collection is private"); err != nil {
		return nil, err
	}
	return col, nil
}

// Update replaces nombre and descripcion and, when provided, visibilidad.
// An absent descripcion clears the stored one.
func (s *CollectionService) Update(ctx context.Context, id int64, actor authz.Actor, in CollectionInput) (*model.Collection, error) {
	col, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.Check(actor, authz.Write, collectionResource(col), "you can only modify your own collections"); err != nil {
		return nil, err
	}

	name, err := requiredText("nombre", in.Name, MaxCollectionNameLength)
	if err != nil {
		return nil, err
	}
	visibility, err := parseVisibility(in.Visibility, col.Visibility)
	if err != nil {
		return nil, err
	}

	col.Name = name
	col.Description = trimmedOrNil(in.Description)
	col.Visibility = visibility
	if err := s.collections.UpdateCollection(ctx, col); err != nil {
		return nil, fmt.Errorf("service: updating collection %d: %w", id, err)
	}

	s.logger.Info("collection updated", slog.Int64("id", id), slog.Int64("actorID", actor.ID))
	return col, nil
}

// Delete removes the collection. A delete that touches no row is reported as
// apperror.ErrDeleteFailed.
func (s *CollectionService) Delete(ctx context.Context, id int64, actor authz.Actor) error {
	col, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := authz.Check(actor, authz.Write, collectionResource(col), "you can only delete your own collections"); err != nil {
		return err
	}

	deleted, err := s.collections.DeleteCollection(ctx, id)
	if err != nil {
		s.logger.Error("failed to delete collection", slog.Int64("id", id), slog.String("error", err.Error()))
		return fmt.Errorf("service: deleting collection %d: %w", id, err)
	}
	if !deleted {
		return apperror.DeleteFailed("collection", id)
	}

	s.logger.Info("collection deleted", slog.Int64("id", id), slog.Int64("actorID", actor.ID))
	return nil
}

// AddSnippet puts an existing snippet in the collection. Unlike
// CodigoService.AddToCollection it fails with apperror.ErrConflict when the
// snippet is already there.
func (s *CollectionService) AddSnippet(ctx context.Context, collectionID, snippetID int64, actor authz.Actor) error {
	col, err := s.loadForWrite(ctx, collectionID, actor)
	if err != nil {
		return err
	}
	if _, err := s.codigos.GetCodigoByID(ctx, snippetID); err != nil {
		return fmt.Errorf("service: loading codigo %d: %w", snippetID, err)
	}

	exists, err := s.items.CollectionItemExists(ctx, col.ID, snippetID)
	if err != nil {
		return fmt.Errorf("service: checking collection %d for codigo %d: %w", col.ID, snippetID, err)
	}
	if exists {
		return apperror.Duplicate("snippet already exists in this collection")
	}

	// InsertCollectionItem reports ErrConflict itself if a concurrent add
	// slipped in after the check.
	if err := s.items.InsertCollectionItem(ctx, col.ID, snippetID); err != nil {
		return fmt.Errorf("service: adding codigo %d to collection %d: %w", snippetID, col.ID, err)
	}

	s.logger.Info("snippet added to collection",
		slog.Int64("collectionID", col.ID),
		slog.Int64("codigoID", snippetID),
	)
	return nil
}

// RemoveSnippet fails with apperror.ErrNotFound when the snippet was not in
// the collection.
func (s *CollectionService) RemoveSnippet(ctx context.Context, collectionID, snippetID int64, actor authz.Actor) error {
	col, err := s.loadForWrite(ctx, collectionID, actor)
	if err != nil {
		return err
	}

	removed, err := s.items.RemoveCollectionItem(ctx, col.ID, snippetID)
	if err != nil {
		return fmt.Errorf("service: removing codigo %d from collection %d: %w", snippetID, col.ID, err)
	}
	if !removed {
		return &apperror.AppError{
			Err:     apperror.ErrNotFound,
			Message: fmt.Sprintf("snippet %d is not in collection %d", snippetID, col.ID),
		}
	}
	return nil
}

// ListSnippets returns the collection's snippets, most recently added first,
// under the same visibility rule as GetByID.
func (s *CollectionService) ListSnippets(ctx context.Context, collectionID int64, actor authz.Actor) ([]model.CollectionItem, error) {
	col, err := s.GetByID(ctx, collectionID, actor)
	if err != nil {
		return nil, err
	}

	items, err := s.collections.ListCodigosByCollection(ctx, col.ID)
	if err != nil {
		return nil, fmt.Errorf("service: listing snippets of collection %d: %w", col.ID, err)
	}
	return items, nil
}

func (s *CollectionService) load(ctx context.Context, id int64) (*model.Collection, error) {
	col, err := s.collections.GetCollectionByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service: loading collection %d: %w", id, err)
	}
	return col, nil
}

func (s *CollectionService) loadForWrite(ctx context.Context, id int64, actor authz.Actor) (*model.Collection, error) {
	col, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.Check(actor, authz.Write, collectionResource(col), "you can only modify your own collections"); err != nil {
		return nil, err
	}
	return col, nil
}

func collectionResource(c *model.Collection) authz.Resource {
	return authz.Resource{OwnerID: c.UserID, Visibility: c.Visibility}
}

// parseVisibility returns fallback when v is absent or blank.
func parseVisibility(v *string, fallback model.Visibility) (model.Visibility, error) {
	s, ok := nonBlank(v)
	if !ok {
		return fallback, nil
	}
	vis := model.Visibility(s)
	if !vis.Valid() {
		return "", apperror.ValidationFailed("visibilidad", "visibilidad must be 'publica' or 'privada'")
	}
	return vis, nil
}
