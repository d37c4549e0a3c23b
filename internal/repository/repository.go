// Package repository declares the persistence contracts the service layer
// depends on. Implementations translate "no such row" into
// apperror.ErrNotFound and unique-key violations into apperror.ErrConflict;
// every other storage failure is returned wrapped but untagged.
package repository

import (
	"context"

	"github.com/sakif/codigoteca/internal/model"
)

type CodigoRepository interface {
	ListCodigosByUser(ctx context.Context, userID int64) ([]model.Codigo, error)
	GetCodigoByID(ctx context.Context, id int64) (*model.Codigo, error)
	CreateCodigo(ctx context.Context, codigo *model.Codigo) error
	UpdateCodigo(ctx context.Context, codigo *model.Codigo) error
	// DeleteCodigo removes the collection links of the code and then the code
	// itself. It reports whether the code row was deleted.
	DeleteCodigo(ctx context.Context, id int64) (bool, error)
	ListCodigosByTag(ctx context.Context, tag string) ([]model.Codigo, error)
	ListCollectionsByCodigo(ctx context.Context, codigoID int64) ([]model.CollectionMembership, error)
}

type CollectionRepository interface {
	ListCollectionsByUser(ctx context.Context, userID int64) ([]model.Collection, error)
	GetCollectionByID(ctx context.Context, id int64) (*model.Collection, error)
	CreateCollection(ctx context.Context, c *model.Collection) error
	UpdateCollection(ctx context.Context, c *model.Collection) error
	DeleteCollection(ctx context.Context, id int64) (bool, error)
	ListCodigosByCollection(ctx context.Context, collectionID int64) ([]model.CollectionItem, error)
}

// CollectionItemRepository manages the coleccion_codigo association rows.
// Both the Codigos and the Collections managers write through it.
type CollectionItemRepository interface {
	CollectionItemExists(ctx context.Context, collectionID, codigoID int64) (bool, error)
	// InsertCollectionItem adds a row and fails on an existing pair.
	InsertCollectionItem(ctx context.Context, collectionID, codigoID int64) error
	// UpsertCollectionItem adds a row or refreshes the added-at time of an
	// existing one.
	UpsertCollectionItem(ctx context.Context, collectionID, codigoID int64) error
	RemoveCollectionItem(ctx context.Context, collectionID, codigoID int64) (bool, error)
}

type CodigoCategoriaRepository interface {
	LinkCategory(ctx context.Context, codigoID, categoryID int64) error
	UnlinkCategory(ctx context.Context, codigoID, categoryID int64) error
	ListCategoriesByCodigo(ctx context.Context, codigoID int64) ([]model.Category, error)
	ListCodigosByCategory(ctx context.Context, categoryID int64) ([]model.Codigo, error)
}

type CategoryRepository interface {
	ListCategories(ctx context.Context) ([]model.Category, error)
	GetCategoryByID(ctx context.Context, id int64) (*model.Category, error)
	CreateCategory(ctx context.Context, c *model.Category) error
	UpdateCategory(ctx context.Context, c *model.Category) error
	DeleteCategory(ctx context.Context, id int64) (bool, error)
}

type SubscriptionRepository interface {
	ListSubscriptionsByUser(ctx context.Context, userID int64) ([]model.Subscription, error)
	GetSubscriptionByID(ctx context.Context, id int64) (*model.Subscription, error)
	CreateSubscription(ctx context.Context, s *model.Subscription) error
	UpdateSubscription(ctx context.Context, s *model.Subscription) error
	DeleteSubscription(ctx context.Context, id int64) (bool, error)
	// FeedByUser returns the codes linked to the active categories the user
	// is subscribed to, newest code first.
	FeedByUser(ctx context.Context, userID int64) ([]model.FeedItem, error)
}

type UserRepository interface {
	CreateUser(ctx context.Context, u *model.User) error
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateUser(ctx context.Context, u *model.User) error
	DeleteUser(ctx context.Context, id int64) (bool, error)
	SearchUsers(ctx context.Context, q string) ([]model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
}
