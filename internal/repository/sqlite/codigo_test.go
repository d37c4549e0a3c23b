package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/codigoteca/internal/apperror"
	"github.com/sakif/codigoteca/internal/model"
)

// =========================================================================
// CREATE / GET
// =========================================================================

func TestCreateCodigo(t *testing.T) {
	db := newTestDB(t)
	u := createTestUser(t, db, "ana@example.com")

	c := &model.Codigo{
		UserID:      u.ID,
		Title:       "Sum",
		Description: ptr("adds numbers"),
		Code:        "a + b",
		Language:    "python",
		Tags:        ptr("math,basic"),
	}
	if err := db.CreateCodigo(context.Background(), c); err != nil {
		t.Fatalf("CreateCodigo() error = %v", err)
	}
	if c.ID == 0 {
		t.Fatal("CreateCodigo() did not set ID")
	}

	got, err := db.GetCodigoByID(context.Background(), c.ID)
	if err != nil {
		t.Fatalf("GetCodigoByID() error = %v", err)
	}
	if got.Title != "Sum" || got.Language != "python" {
		t.Errorf("GetCodigoByID() = %+v", got)
	}
	if got.Tags == nil || *got.Tags != "math,basic" {
		t.Errorf("Tags = %v, want math,basic", got.Tags)
	}
	if got.Type != nil {
		t.Errorf("Type = %v, want nil", *got.Type)
	}
}

func TestGetCodigoByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetCodigoByID(context.Background(), 404)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetCodigoByID() error = %v, want ErrNotFound", err)
	}
}

func TestCreateCodigo_UnknownUser(t *testing.T) {
	db := newTestDB(t)

	c := &model.Codigo{UserID: 999, Title: "x", Code: "x", Language: "go"}
	err := db.CreateCodigo(context.Background(), c)
	if err == nil {
		t.Fatal("CreateCodigo() should fail on a missing user (foreign key)")
	}
	if apperror.Code(err) != apperror.CodeInternal {
		t.Errorf("Code(err) = %s, want INTERNAL", apperror.Code(err))
	}
}

func TestListCodigosByUser(t *testing.T) {
	db := newTestDB(t)
	ana := createTestUser(t, db, "ana@example.com")
	bob := createTestUser(t, db, "bob@example.com")

	first := createTestCodigo(t, db, ana.ID, "first", nil)
	second := createTestCodigo(t, db, ana.ID, "second", nil)
	createTestCodigo(t, db, bob.ID, "other", nil)

	got, err := db.ListCodigosByUser(context.Background(), ana.ID)
	if err != nil {
		t.Fatalf("ListCodigosByUser() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].ID != second.ID || got[1].ID != first.ID {
		t.Errorf("order = [%d %d], want newest first", got[0].ID, got[1].ID)
	}

	empty, err := db.ListCodigosByUser(context.Background(), 12345)
	if err != nil {
		t.Fatalf("ListCodigosByUser() error = %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Errorf("ListCodigosByUser() = %v, want empty non-nil slice", empty)
	}
}

// =========================================================================
// UPDATE / DELETE
// =========================================================================

func TestUpdateCodigo(t *testing.T) {
	db := newTestDB(t)
	u := createTestUser(t, db, "ana@example.com")
	c := createTestCodigo(t, db, u.ID, "before", ptr("a,b"))

	c.Title = "after"
	c.Tags = nil
	c.Type = ptr("snippet")
	if err := db.UpdateCodigo(context.Background(), c); err != nil {
		t.Fatalf("UpdateCodigo() error = %v", err)
	}

	got, _ := db.GetCodigoByID(context.Background(), c.ID)
	if got.Title != "after" {
		t.Errorf("Title = %q, want after", got.Title)
	}
	if got.Tags != nil {
		t.Errorf("Tags = %q, want nil", *got.Tags)
	}
	if got.Type == nil || *got.Type != "snippet" {
		t.Errorf("Type = %v, want snippet", got.Type)
	}
}

func TestUpdateCodigo_NotFound(t *testing.T) {
	db := newTestDB(t)

	err := db.UpdateCodigo(context.Background(), &model.Codigo{ID: 77, Title: "x", Code: "x", Language: "go"})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("UpdateCodigo() error = %v, want ErrNotFound", err)
	}
}

func TestDeleteCodigo_RemovesCollectionItems(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	u := createTestUser(t, db, "ana@example.com")
	c := createTestCodigo(t, db, u.ID, "doomed", nil)
	col := createTestCollection(t, db, u.ID, "favs", model.VisibilityPrivada)

	if err := db.InsertCollectionItem(ctx, col.ID, c.ID); err != nil {
		t.Fatalf("InsertCollectionItem() error = %v", err)
	}

	deleted, err := db.DeleteCodigo(ctx, c.ID)
	if err != nil {
		t.Fatalf("DeleteCodigo() error = %v", err)
	}
	if !deleted {
		t.Error("DeleteCodigo() = false, want true")
	}

	exists, _ := db.CollectionItemExists(ctx, col.ID, c.ID)
	if exists {
		t.Error("collection item survived the codigo delete")
	}
	items, _ := db.ListCodigosByCollection(ctx, col.ID)
	if len(items) != 0 {
		t.Errorf("collection still lists %d items", len(items))
	}
}

func TestDeleteCodigo_Missing(t *testing.T) {
	db := newTestDB(t)

	deleted, err := db.DeleteCodigo(context.Background(), 99)
	if err != nil {
		t.Fatalf("DeleteCodigo() error = %v", err)
	}
	if deleted {
		t.Error("DeleteCodigo() = true for a missing row")
	}
}

// =========================================================================
// TAGS / MEMBERSHIP
// =========================================================================

func TestListCodigosByTag_ExactElementMatch(t *testing.T) {
	db := newTestDB(t)
	u := createTestUser(t, db, "ana@example.com")

	withMath := createTestCodigo(t, db, u.ID, "math one", ptr("math,basic"))
	createTestCodigo(t, db, u.ID, "mathematics", ptr("mathematics"))
	lastMath := createTestCodigo(t, db, u.ID, "math two", ptr("algebra,math"))
	createTestCodigo(t, db, u.ID, "untagged", nil)

	tests := []struct {
		tag     string
		wantIDs []int64
	}{
		{"math", []int64{lastMath.ID, withMath.ID}},
		{"mat", nil},
		{"basic", []int64{withMath.ID}},
		{"nothing", nil},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			got, err := db.ListCodigosByTag(context.Background(), tt.tag)
			if err != nil {
				t.Fatalf("ListCodigosByTag() error = %v", err)
			}
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("len = %d, want %d", len(got), len(tt.wantIDs))
			}
			for i, id := range tt.wantIDs {
				if got[i].ID != id {
					t.Errorf("got[%d].ID = %d, want %d", i, got[i].ID, id)
				}
			}
		})
	}
}

func TestListCollectionsByCodigo_NewestMembershipFirst(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	u := createTestUser(t, db, "ana@example.com")
	c := createTestCodigo(t, db, u.ID, "shared", nil)
	a := createTestCollection(t, db, u.ID, "a", model.VisibilityPrivada)
	b := createTestCollection(t, db, u.ID, "b", model.VisibilityPublica)

	if err := db.UpsertCollectionItem(ctx, a.ID, c.ID); err != nil {
		t.Fatal(err)
	}
	if err := db.UpsertCollectionItem(ctx, b.ID, c.ID); err != nil {
		t.Fatal(err)
	}

	got, err := db.ListCollectionsByCodigo(ctx, c.ID)
	if err != nil {
		t.Fatalf("ListCollectionsByCodigo() error = %v", err)
	}
	if len(got) != 2 || got[0].ID != b.ID || got[1].ID != a.ID {
		t.Fatalf("ListCollectionsByCodigo() = %+v, want [b a]", got)
	}

	// Re-adding to a refreshes its timestamp and moves it to the front.
	if err := db.UpsertCollectionItem(ctx, a.ID, c.ID); err != nil {
		t.Fatal(err)
	}
	got, _ = db.ListCollectionsByCodigo(ctx, c.ID)
	if len(got) != 2 || got[0].ID != a.ID {
		t.Errorf("after refresh first = %d, want %d", got[0].ID, a.ID)
	}
	if !got[0].AddedAt.After(got[1].AddedAt) {
		t.Errorf("AddedAt %v should be after %v", got[0].AddedAt, got[1].AddedAt)
	}
}
