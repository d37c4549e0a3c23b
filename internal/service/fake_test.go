package service

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/sakif/codigoteca/internal/apperror"
	"github.com/sakif/codigoteca/internal/model"
	"github.com/sakif/codigoteca/internal/repository"
)

// =========================================================================
// IN-MEMORY STORE
// =========================================================================
//
// fakeStore implements every repository interface with plain maps, the way
// the sqlite package does with tables. Values are copied in and out so a
// service mutating a returned struct cannot change stored state.
//
// Set failWith to make every call return that error (simulated outage).

type itemKey struct{ collectionID, codigoID int64 }
type linkKey struct{ codigoID, categoryID int64 }

type fakeStore struct {
	codigos       map[int64]model.Codigo
	collections   map[int64]model.Collection
	items         map[itemKey]time.Time
	categories    map[int64]model.Category
	links         map[linkKey]bool
	subscriptions map[int64]model.Subscription
	users         map[int64]model.User

	nextID int64
	clock  time.Time

	failWith error
	// updates counts UpdateX calls so tests can assert storage was not hit.
	updates int
}

var (
	_ repository.CodigoRepository          = (*fakeStore)(nil)
	_ repository.CollectionRepository      = (*fakeStore)(nil)
	_ repository.CollectionItemRepository  = (*fakeStore)(nil)
	_ repository.CodigoCategoriaRepository = (*fakeStore)(nil)
	_ repository.CategoryRepository        = (*fakeStore)(nil)
	_ repository.SubscriptionRepository    = (*fakeStore)(nil)
	_ repository.UserRepository            = (*fakeStore)(nil)
)

func newFakeStore() *fakeStore {
	return &fakeStore{
		codigos:       make(map[int64]model.Codigo),
		collections:   make(map[int64]model.Collection),
		items:         make(map[itemKey]time.Time),
		categories:    make(map[int64]model.Category),
		links:         make(map[linkKey]bool),
		subscriptions: make(map[int64]model.Subscription),
		users:         make(map[int64]model.User),
		clock:         time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (f *fakeStore) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *fakeStore) now() time.Time {
	f.clock = f.clock.Add(time.Second)
	return f.clock
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ---- codigos ----

func (f *fakeStore) ListCodigosByUser(_ context.Context, userID int64) ([]model.Codigo, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	out := make([]model.Codigo, 0)
	for _, c := range f.codigos {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	sortCodigosDesc(out)
	return out, nil
}

func (f *fakeStore) GetCodigoByID(_ context.Context, id int64) (*model.Codigo, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	c, ok := f.codigos[id]
	if !ok {
		return nil, apperror.NotFound("codigo", id)
	}
	return &c, nil
}

func (f *fakeStore) CreateCodigo(_ context.Context, c *model.Codigo) error {
	if f.failWith != nil {
		return f.failWith
	}
	c.ID = f.id()
	f.codigos[c.ID] = *c
	return nil
}

func (f *fakeStore) UpdateCodigo(_ context.Context, c *model.Codigo) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.updates++
	if _, ok := f.codigos[c.ID]; !ok {
		return apperror.NotFound("codigo", c.ID)
	}
	f.codigos[c.ID] = *c
	return nil
}

func (f *fakeStore) DeleteCodigo(_ context.Context, id int64) (bool, error) {
	if f.failWith != nil {
		return false, f.failWith
	}
	for k := range f.items {
		if k.codigoID == id {
			delete(f.items, k)
		}
	}
	_, ok := f.codigos[id]
	delete(f.codigos, id)
	return ok, nil
}

func (f *fakeStore) ListCodigosByTag(_ context.Context, tag string) ([]model.Codigo, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	out := make([]model.Codigo, 0)
	for _, c := range f.codigos {
		if c.HasTag(tag) {
			out = append(out, c)
		}
	}
	sortCodigosDesc(out)
	return out, nil
}

func (f *fakeStore) ListCollectionsByCodigo(_ context.Context, codigoID int64) ([]model.CollectionMembership, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	out := make([]model.CollectionMembership, 0)
	for k, at := range f.items {
		if k.codigoID == codigoID {
			out = append(out, model.CollectionMembership{Collection: f.collections[k.collectionID], AddedAt: at})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AddedAt.After(out[j].AddedAt) })
	return out, nil
}

// ---- collections ----

func (f *fakeStore) ListCollectionsByUser(_ context.Context, userID int64) ([]model.Collection, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	out := make([]model.Collection, 0)
	for _, c := range f.collections {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakeStore) GetCollectionByID(_ context.Context, id int64) (*model.Collection, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	c, ok := f.collections[id]
	if !ok {
		return nil, apperror.NotFound("collection", id)
	}
	return &c, nil
}

func (f *fakeStore) CreateCollection(_ context.Context, c *model.Collection) error {
	if f.failWith != nil {
		return f.failWith
	}
	c.ID = f.id()
	f.collections[c.ID] = *c
	return nil
}

func (f *fakeStore) UpdateCollection(_ context.Context, c *model.Collection) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.updates++
	if _, ok := f.collections[c.ID]; !ok {
		return apperror.NotFound("collection", c.ID)
	}
	f.collections[c.ID] = *c
	return nil
}

func (f *fakeStore) DeleteCollection(_ context.Context, id int64) (bool, error) {
	if f.failWith != nil {
		return false, f.failWith
	}
	_, ok := f.collections[id]
	delete(f.collections, id)
	for k := range f.items {
		if k.collectionID == id {
			delete(f.items, k)
		}
	}
	return ok, nil
}

func (f *fakeStore) ListCodigosByCollection(_ context.Context, collectionID int64) ([]model.CollectionItem, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	out := make([]model.CollectionItem, 0)
	for k, at := range f.items {
		if k.collectionID == collectionID {
			out = append(out, model.CollectionItem{Codigo: f.codigos[k.codigoID], AddedAt: at})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AddedAt.After(out[j].AddedAt) })
	return out, nil
}

// ---- coleccion_codigo ----

func (f *fakeStore) CollectionItemExists(_ context.Context, collectionID, codigoID int64) (bool, error) {
	if f.failWith != nil {
		return false, f.failWith
	}
	_, ok := f.items[itemKey{collectionID, codigoID}]
	return ok, nil
}

func (f *fakeStore) InsertCollectionItem(_ context.Context, collectionID, codigoID int64) error {
	if f.failWith != nil {
		return f.failWith
	}
	k := itemKey{collectionID, codigoID}
	if _, ok := f.items[k]; ok {
		return apperror.Duplicate("snippet already exists in this collection")
	}
	f.items[k] = f.now()
	return nil
}

func (f *fakeStore) UpsertCollectionItem(_ context.Context, collectionID, codigoID int64) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.items[itemKey{collectionID, codigoID}] = f.now()
	return nil
}

func (f *fakeStore) RemoveCollectionItem(_ context.Context, collectionID, codigoID int64) (bool, error) {
	if f.failWith != nil {
		return false, f.failWith
	}
	k := itemKey{collectionID, codigoID}
	_, ok := f.items[k]
	delete(f.items, k)
	return ok, nil
}

// ---- codigo_categoria ----

func (f *fakeStore) LinkCategory(_ context.Context, codigoID, categoryID int64) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.links[linkKey{codigoID, categoryID}] = true
	return nil
}

func (f *fakeStore) UnlinkCategory(_ context.Context, codigoID, categoryID int64) error {
	if f.failWith != nil {
		return f.failWith
	}
	delete(f.links, linkKey{codigoID, categoryID})
	return nil
}

func (f *fakeStore) ListCategoriesByCodigo(_ context.Context, codigoID int64) ([]model.Category, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	out := make([]model.Category, 0)
	for k := range f.links {
		if k.codigoID == codigoID {
			out = append(out, f.categories[k.categoryID])
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeStore) ListCodigosByCategory(_ context.Context, categoryID int64) ([]model.Codigo, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	out := make([]model.Codigo, 0)
	for k := range f.links {
		if k.categoryID == categoryID {
			out = append(out, f.codigos[k.codigoID])
		}
	}
	sortCodigosDesc(out)
	return out, nil
}

// ---- categorias ----

func (f *fakeStore) ListCategories(_ context.Context) ([]model.Category, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	out := make([]model.Category, 0, len(f.categories))
	for _, c := range f.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeStore) GetCategoryByID(_ context.Context, id int64) (*model.Category, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	c, ok := f.categories[id]
	if !ok {
		return nil, apperror.NotFound("category", id)
	}
	return &c, nil
}

func (f *fakeStore) CreateCategory(_ context.Context, c *model.Category) error {
	if f.failWith != nil {
		return f.failWith
	}
	for _, existing := range f.categories {
		if existing.Name == c.Name {
			return apperror.Duplicate("category already exists")
		}
	}
	c.ID = f.id()
	f.categories[c.ID] = *c
	return nil
}

func (f *fakeStore) UpdateCategory(_ context.Context, c *model.Category) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.updates++
	if _, ok := f.categories[c.ID]; !ok {
		return apperror.NotFound("category", c.ID)
	}
	f.categories[c.ID] = *c
	return nil
}

func (f *fakeStore) DeleteCategory(_ context.Context, id int64) (bool, error) {
	if f.failWith != nil {
		return false, f.failWith
	}
	_, ok := f.categories[id]
	delete(f.categories, id)
	return ok, nil
}

// ---- suscripciones ----

func (f *fakeStore) ListSubscriptionsByUser(_ context.Context, userID int64) ([]model.Subscription, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	out := make([]model.Subscription, 0)
	for _, s := range f.subscriptions {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakeStore) GetSubscriptionByID(_ context.Context, id int64) (*model.Subscription, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	s, ok := f.subscriptions[id]
	if !ok {
		return nil, apperror.NotFound("subscription", id)
	}
	return &s, nil
}

func (f *fakeStore) CreateSubscription(_ context.Context, s *model.Subscription) error {
	if f.failWith != nil {
		return f.failWith
	}
	for _, existing := range f.subscriptions {
		if existing.UserID == s.UserID && existing.CategoryID == s.CategoryID {
			return apperror.Duplicate("user is already subscribed to this category")
		}
	}
	s.ID = f.id()
	s.CreatedAt = f.now()
	f.subscriptions[s.ID] = *s
	return nil
}

func (f *fakeStore) UpdateSubscription(_ context.Context, s *model.Subscription) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.updates++
	if _, ok := f.subscriptions[s.ID]; !ok {
		return apperror.NotFound("subscription", s.ID)
	}
	f.subscriptions[s.ID] = *s
	return nil
}

func (f *fakeStore) DeleteSubscription(_ context.Context, id int64) (bool, error) {
	if f.failWith != nil {
		return false, f.failWith
	}
	_, ok := f.subscriptions[id]
	delete(f.subscriptions, id)
	return ok, nil
}

func (f *fakeStore) FeedByUser(_ context.Context, userID int64) ([]model.FeedItem, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	out := make([]model.FeedItem, 0)
	for _, s := range f.subscriptions {
		cat := f.categories[s.CategoryID]
		if s.UserID != userID || cat.State != model.EstadoActivo {
			continue
		}
		for k := range f.links {
			if k.categoryID == cat.ID {
				out = append(out, model.FeedItem{Codigo: f.codigos[k.codigoID], CategoryID: cat.ID, CategoryName: cat.Name})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

// ---- usuarios ----

func (f *fakeStore) CreateUser(_ context.Context, u *model.User) error {
	if f.failWith != nil {
		return f.failWith
	}
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return apperror.Duplicate("email is already registered")
		}
	}
	u.ID = f.id()
	u.CreatedAt = f.now()
	f.users[u.ID] = *u
	return nil
}

func (f *fakeStore) GetUserByID(_ context.Context, id int64) (*model.User, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	return &u, nil
}

func (f *fakeStore) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	for _, u := range f.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, apperror.NotFound("user", email)
}

func (f *fakeStore) UpdateUser(_ context.Context, u *model.User) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.updates++
	if _, ok := f.users[u.ID]; !ok {
		return apperror.NotFound("user", u.ID)
	}
	f.users[u.ID] = *u
	return nil
}

func (f *fakeStore) DeleteUser(_ context.Context, id int64) (bool, error) {
	if f.failWith != nil {
		return false, f.failWith
	}
	_, ok := f.users[id]
	delete(f.users, id)
	return ok, nil
}

func (f *fakeStore) SearchUsers(_ context.Context, q string) ([]model.User, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	q = strings.ToLower(q)
	out := make([]model.User, 0)
	for _, u := range f.users {
		if strings.Contains(strings.ToLower(u.Name), q) || strings.Contains(u.Email, q) {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) ListUsers(_ context.Context) ([]model.User, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	out := make([]model.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func sortCodigosDesc(cs []model.Codigo) {
	sort.Slice(cs, func(i, j int) bool { return cs[i].ID > cs[j].ID })
}

// ---- seeding helpers ----

func (f *fakeStore) seedCodigo(ownerID int64, title string, tags ...string) model.Codigo {
	c := model.Codigo{
		UserID:   ownerID,
		Title:    title,
		Code:     "return a+b",
		Language: "js",
		Tags:     model.JoinTags(tags),
	}
	c.ID = f.id()
	f.codigos[c.ID] = c
	return c
}

func (f *fakeStore) seedCollection(ownerID int64, name string, vis model.Visibility) model.Collection {
	c := model.Collection{UserID: ownerID, Name: name, Visibility: vis}
	c.ID = f.id()
	f.collections[c.ID] = c
	return c
}

func (f *fakeStore) seedCategory(name string, state model.CategoryState) model.Category {
	c := model.Category{Name: name, Description: name, State: state}
	c.ID = f.id()
	f.categories[c.ID] = c
	return c
}

func ptr[T any](v T) *T { return &v }
