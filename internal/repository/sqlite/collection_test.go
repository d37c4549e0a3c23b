package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/codigoteca/internal/apperror"
	"github.com/sakif/codigoteca/internal/model"
)

func TestCollectionCRUD(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	u := createTestUser(t, db, "ana@example.com")

	col := &model.Collection{UserID: u.ID, Name: "favs", Description: ptr("best"), Visibility: model.VisibilityPublica}
	if err := db.CreateCollection(ctx, col); err != nil {
		t.Fatalf("CreateCollection() error = %v", err)
	}

	got, err := db.GetCollectionByID(ctx, col.ID)
	if err != nil {
		t.Fatalf("GetCollectionByID() error = %v", err)
	}
	if got.Name != "favs" || got.Visibility != model.VisibilityPublica {
		t.Errorf("GetCollectionByID() = %+v", got)
	}
	if got.Description == nil || *got.Description != "best" {
		t.Errorf("Description = %v, want best", got.Description)
	}

	got.Name = "renamed"
	got.Description = nil
	got.Visibility = model.VisibilityPrivada
	if err := db.UpdateCollection(ctx, got); err != nil {
		t.Fatalf("UpdateCollection() error = %v", err)
	}
	again, _ := db.GetCollectionByID(ctx, col.ID)
	if again.Name != "renamed" || again.Description != nil || again.Visibility != model.VisibilityPrivada {
		t.Errorf("after update = %+v", again)
	}

	list, err := db.ListCollectionsByUser(ctx, u.ID)
	if err != nil || len(list) != 1 {
		t.Fatalf("ListCollectionsByUser() = %v, %v", list, err)
	}

	deleted, err := db.DeleteCollection(ctx, col.ID)
	if err != nil || !deleted {
		t.Fatalf("DeleteCollection() = %v, %v", deleted, err)
	}
	if _, err := db.GetCollectionByID(ctx, col.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetCollectionByID() after delete error = %v, want ErrNotFound", err)
	}

	deleted, err = db.DeleteCollection(ctx, col.ID)
	if err != nil || deleted {
		t.Errorf("second DeleteCollection() = %v, %v, want false, nil", deleted, err)
	}
}

func TestCreateCollection_RejectsUnknownVisibility(t *testing.T) {
	db := newTestDB(t)
	u := createTestUser(t, db, "ana@example.com")

	err := db.CreateCollection(context.Background(), &model.Collection{UserID: u.ID, Name: "x", Visibility: "secret"})
	if err == nil {
		t.Error("CreateCollection() should fail the CHECK constraint")
	}
}

func TestCollectionItems(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	u := createTestUser(t, db, "ana@example.com")
	col := createTestCollection(t, db, u.ID, "favs", model.VisibilityPrivada)
	first := createTestCodigo(t, db, u.ID, "first", nil)
	second := createTestCodigo(t, db, u.ID, "second", nil)

	if err := db.InsertCollectionItem(ctx, col.ID, second.ID); err != nil {
		t.Fatalf("InsertCollectionItem() error = %v", err)
	}
	if err := db.InsertCollectionItem(ctx, col.ID, first.ID); err != nil {
		t.Fatalf("InsertCollectionItem() error = %v", err)
	}

	err := db.InsertCollectionItem(ctx, col.ID, first.ID)
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("duplicate InsertCollectionItem() error = %v, want ErrConflict", err)
	}

	items, err := db.ListCodigosByCollection(ctx, col.ID)
	if err != nil {
		t.Fatalf("ListCodigosByCollection() error = %v", err)
	}
	if len(items) != 2 || items[0].ID != first.ID || items[1].ID != second.ID {
		t.Fatalf("ListCodigosByCollection() = %+v, want most recently added first", items)
	}
	if items[0].AddedAt.IsZero() {
		t.Error("AddedAt not populated")
	}

	exists, err := db.CollectionItemExists(ctx, col.ID, first.ID)
	if err != nil || !exists {
		t.Errorf("CollectionItemExists() = %v, %v", exists, err)
	}

	removed, err := db.RemoveCollectionItem(ctx, col.ID, first.ID)
	if err != nil || !removed {
		t.Errorf("RemoveCollectionItem() = %v, %v", removed, err)
	}
	removed, err = db.RemoveCollectionItem(ctx, col.ID, first.ID)
	if err != nil || removed {
		t.Errorf("second RemoveCollectionItem() = %v, %v, want false", removed, err)
	}
}

func TestUpsertCollectionItem_RefreshesTimestamp(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	u := createTestUser(t, db, "ana@example.com")
	col := createTestCollection(t, db, u.ID, "favs", model.VisibilityPrivada)
	c := createTestCodigo(t, db, u.ID, "c", nil)

	if err := db.UpsertCollectionItem(ctx, col.ID, c.ID); err != nil {
		t.Fatal(err)
	}
	before, _ := db.ListCodigosByCollection(ctx, col.ID)

	if err := db.UpsertCollectionItem(ctx, col.ID, c.ID); err != nil {
		t.Fatalf("second UpsertCollectionItem() error = %v", err)
	}
	after, _ := db.ListCodigosByCollection(ctx, col.ID)

	if len(after) != 1 {
		t.Fatalf("len = %d, want exactly one row", len(after))
	}
	if !after[0].AddedAt.After(before[0].AddedAt) {
		t.Errorf("AddedAt %v not refreshed past %v", after[0].AddedAt, before[0].AddedAt)
	}
}
