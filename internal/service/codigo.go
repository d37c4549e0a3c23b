// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (Business layer) → validates, enforces ownership, orchestrates
//	Repository (Data layer)  → reads/writes to the database
//
// Every service method that touches a single owned resource runs the same
// three steps in order:
//
//  1. load the resource (missing → apperror.ErrNotFound)
//  2. authz.Check against the actor (denied → apperror.ErrForbidden)
//  3. perform the operation
//
// so a missing resource is always reported as NOT_FOUND, whoever asks.
//
// The steps are separate store calls without a wrapping transaction. A
// concurrent delete between steps 1 and 3 surfaces as NOT_FOUND from the
// write (updates check rows affected) or as a no-op delete reported false.
//
// Services take repository interfaces, never *sqlite.DB, so tests can pass
// the in-memory fake from fake_test.go.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/codigoteca/internal/apperror"
	"github.com/sakif/codigoteca/internal/authz"
	"github.com/sakif/codigoteca/internal/model"
	"github.com/sakif/codigoteca/internal/repository"
)

// Validation limits.
const (
	MaxTitleLength = 200
	MaxCodeLength  = 100000 // ~100KB of source
	MaxTagLength   = 50
)

// CodigoInput carries the fields a client may set on a snippet.
//
// A nil pointer means "not provided". For Tags, nil means not provided and
// an empty (non-nil) slice means "clear all tags".
type CodigoInput struct {
	Title       *string
	Description *string
	Code        *string
	Language    *string
	Tags        []string
	Type        *string
}

// CodigoService handles business logic for code snippets and their
// membership in collections.
type CodigoService struct {
	codigos     repository.CodigoRepository
	collections repository.CollectionRepository
	items       repository.CollectionItemRepository
	logger      *slog.Logger
}

func NewCodigoService(
	codigos repository.CodigoRepository,
	collections repository.CollectionRepository,
	items repository.CollectionItemRepository,
	logger *slog.Logger,
) *CodigoService {
	return &CodigoService{
		codigos:     codigos,
		collections: collections,
		items:       items,
		logger:      logger,
	}
}

// ListByUser returns every snippet owned by userID, newest first.
func (s *CodigoService) ListByUser(ctx context.Context, userID int64) ([]model.Codigo, error) {
	codigos, err := s.codigos.ListCodigosByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service: listing codigos of user %d: %w", userID, err)
	}
	return codigos, nil
}

// GetByID returns the snippet if actor owns it or is an admin. Snippets have
// no public form.
func (s *CodigoService) GetByID(ctx context.Context, id int64, actor authz.Actor) (*model.Codigo, error) {
	c, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.Check(actor, authz.Read, codigoResource(c), "you do not have access to this code"); err != nil {
		return nil, err
	}
	return c, nil
}

// Create validates in and stores a new snippet owned by ownerID.
func (s *CodigoService) Create(ctx context.Context, ownerID int64, in CodigoInput) (*model.Codigo, error) {
	title, err := requiredText("titulo", in.Title, MaxTitleLength)
	if err != nil {
		return nil, err
	}
	code, err := requiredText("codigo", in.Code, MaxCodeLength)
	if err != nil {
		return nil, err
	}
	language, err := requiredText("lenguaje", in.Language, MaxTitleLength)
	if err != nil {
		return nil, err
	}
	tags, err := normalizeTags(in.Tags)
	if err != nil {
		return nil, err
	}

	c := &model.Codigo{
		UserID:      ownerID,
		Title:       title,
		Description: trimmedOrNil(in.Description),
		Code:        code,
		Language:    language,
		Tags:        model.JoinTags(tags),
		Type:        trimmedOrNil(in.Type),
	}
	if err := s.codigos.CreateCodigo(ctx, c); err != nil {
		s.logger.Error("failed to create codigo", slog.Int64("userID", ownerID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("service: creating codigo: %w", err)
	}

	s.logger.Info("codigo created", slog.Int64("id", c.ID), slog.Int64("userID", ownerID))
	return c, nil
}

// Update applies the provided fields of in to the snippet.
//
// Absent fields keep their value. titulo, codigo and lenguaje also keep their
// value when provided blank, so the three never become empty. descripcion and
// tipo are replaced when provided (blank clears them). tags, when provided,
// replaces the whole list.
func (s *CodigoService) Update(ctx context.Context, id int64, actor authz.Actor, in CodigoInput) (*model.Codigo, error) {
	c, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.Check(actor, authz.Write, codigoResource(c), "you can only modify your own code"); err != nil {
		return nil, err
	}

	if v, ok := nonBlank(in.Title); ok {
		if len(v) > MaxTitleLength {
			return nil, apperror.ValidationFailed("titulo", fmt.Sprintf("titulo must be %d characters or fewer", MaxTitleLength))
		}
		c.Title = v
	}
	if v, ok := nonBlank(in.Code); ok {
		if len(v) > MaxCodeLength {
			return nil, apperror.ValidationFailed("codigo", fmt.Sprintf("codigo must be %d characters or fewer", MaxCodeLength))
		}
		c.Code = v
	}
	if v, ok := nonBlank(in.Language); ok {
		c.Language = v
	}
	if in.Description != nil {
		c.Description = trimmedOrNil(in.Description)
	}
	if in.Type != nil {
		c.Type = trimmedOrNil(in.Type)
	}
	if in.Tags != nil {
		tags, err := normalizeTags(in.Tags)
		if err != nil {
			return nil, err
		}
		c.Tags = model.JoinTags(tags)
	}

	if err := s.codigos.UpdateCodigo(ctx, c); err != nil {
		return nil, fmt.Errorf("service: updating codigo %d: %w", id, err)
	}

	s.logger.Info("codigo updated", slog.Int64("id", id), slog.Int64("actorID", actor.ID))
	return c, nil
}

// Delete removes the snippet and its collection memberships. It reports
// whether the snippet row was actually removed.
func (s *CodigoService) Delete(ctx context.Context, id int64, actor authz.Actor) (bool, error) {
	c, err := s.load(ctx, id)
	if err != nil {
		return false, err
	}
	if err := authz.Check(actor, authz.Write, codigoResource(c), "you can only delete your own code"); err != nil {
		return false, err
	}

	deleted, err := s.codigos.DeleteCodigo(ctx, id)
	if err != nil {
		s.logger.Error("failed to delete codigo", slog.Int64("id", id), slog.String("error", err.Error()))
		return false, fmt.Errorf("service: deleting codigo %d: %w", id, err)
	}

	if deleted {
		s.logger.Info("codigo deleted", slog.Int64("id", id), slog.Int64("actorID", actor.ID))
	}
	return deleted, nil
}

// ListByTag is public: it returns every snippet carrying tag as a whole
// element of its tag list.
func (s *CodigoService) ListByTag(ctx context.Context, tag string) ([]model.Codigo, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return nil, apperror.ValidationFailed("tag", "tag is required")
	}
	codigos, err := s.codigos.ListCodigosByTag(ctx, tag)
	if err != nil {
		return nil, fmt.Errorf("service: listing codigos by tag: %w", err)
	}
	return codigos, nil
}

// AddToCollection puts the snippet in the collection, or refreshes its
// fecha_agregado when it is already there. Permission is checked against the
// collection's owner.
func (s *CodigoService) AddToCollection(ctx context.Context, codigoID, collectionID int64, actor authz.Actor) error {
	col, err := s.loadMembershipTargets(ctx, codigoID, collectionID, actor)
	if err != nil {
		return err
	}

	if err := s.items.UpsertCollectionItem(ctx, col.ID, codigoID); err != nil {
		return fmt.Errorf("service: adding codigo %d to collection %d: %w", codigoID, collectionID, err)
	}

	s.logger.Info("codigo added to collection",
		slog.Int64("codigoID", codigoID),
		slog.Int64("collectionID", collectionID),
	)
	return nil
}

// RemoveFromCollection reports false when the snippet was not in the
// collection.
func (s *CodigoService) RemoveFromCollection(ctx context.Context, codigoID, collectionID int64, actor authz.Actor) (bool, error) {
	col, err := s.loadMembershipTargets(ctx, codigoID, collectionID, actor)
	if err != nil {
		return false, err
	}

	removed, err := s.items.RemoveCollectionItem(ctx, col.ID, codigoID)
	if err != nil {
		return false, fmt.Errorf("service: removing codigo %d from collection %d: %w", codigoID, collectionID, err)
	}
	return removed, nil
}

// ListCollectionsContaining returns the collections holding the snippet, most
// recently added first. Permission is checked against the snippet's owner.
func (s *CodigoService) ListCollectionsContaining(ctx context.Context, codigoID int64, actor authz.Actor) ([]model.CollectionMembership, error) {
	c, err := s.load(ctx, codigoID)
	if err != nil {
		return nil, err
	}
	if err := authz.Check(actor, authz.Read, codigoResource(c), "you can only list the collections of your own code"); err != nil {
		return nil, err
	}

	memberships, err := s.codigos.ListCollectionsByCodigo(ctx, codigoID)
	if err != nil {
		return nil, fmt.Errorf("service: listing collections of codigo %d: %w", codigoID, err)
	}
	return memberships, nil
}

func (s *CodigoService) load(ctx context.Context, id int64) (*model.Codigo, error) {
	c, err := s.codigos.GetCodigoByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service: loading codigo %d: %w", id, err)
	}
	return c, nil
}

// loadMembershipTargets checks that both the snippet and the collection exist,
// in that order, and that actor may write to the collection.
func (s *CodigoService) loadMembershipTargets(ctx context.Context, codigoID, collectionID int64, actor authz.Actor) (*model.Collection, error) {
	if _, err := s.load(ctx, codigoID); err != nil {
		return nil, err
	}
	col, err := s.collections.GetCollectionByID(ctx, collectionID)
	if err != nil {
		return nil, fmt.Errorf("service: loading collection %d: %w", collectionID, err)
	}
	if err := authz.Check(actor, authz.Write, collectionResource(col), "you can only modify your own collections"); err != nil {
		return nil, err
	}
	return col, nil
}

func codigoResource(c *model.Codigo) authz.Resource {
	return authz.Resource{OwnerID: c.UserID}
}
