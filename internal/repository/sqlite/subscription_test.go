package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/codigoteca/internal/apperror"
	"github.com/sakif/codigoteca/internal/model"
)

func TestSubscriptionCRUD(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	u := createTestUser(t, db, "ana@example.com")
	cat := createTestCategory(t, db, "go", model.EstadoActivo)

	s := &model.Subscription{UserID: u.ID, CategoryID: cat.ID, Notifications: true}
	if err := db.CreateSubscription(ctx, s); err != nil {
		t.Fatalf("CreateSubscription() error = %v", err)
	}
	if s.ID == 0 || s.CreatedAt.IsZero() {
		t.Fatalf("CreateSubscription() left ID/CreatedAt unset: %+v", s)
	}

	dup := &model.Subscription{UserID: u.ID, CategoryID: cat.ID}
	if err := db.CreateSubscription(ctx, dup); !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("duplicate CreateSubscription() error = %v, want ErrConflict", err)
	}

	s.Notifications = false
	if err := db.UpdateSubscription(ctx, s); err != nil {
		t.Fatalf("UpdateSubscription() error = %v", err)
	}
	got, err := db.GetSubscriptionByID(ctx, s.ID)
	if err != nil {
		t.Fatalf("GetSubscriptionByID() error = %v", err)
	}
	if got.Notifications {
		t.Error("Notifications = true, want false")
	}

	list, err := db.ListSubscriptionsByUser(ctx, u.ID)
	if err != nil || len(list) != 1 {
		t.Fatalf("ListSubscriptionsByUser() = %v, %v", list, err)
	}

	deleted, err := db.DeleteSubscription(ctx, s.ID)
	if err != nil || !deleted {
		t.Fatalf("DeleteSubscription() = %v, %v", deleted, err)
	}
	if _, err := db.GetSubscriptionByID(ctx, s.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetSubscriptionByID() error = %v, want ErrNotFound", err)
	}
	if err := db.UpdateSubscription(ctx, s); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("UpdateSubscription() on deleted row error = %v, want ErrNotFound", err)
	}
}

func TestFeedByUser_OnlyActiveCategories(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	reader := createTestUser(t, db, "reader@example.com")
	author := createTestUser(t, db, "author@example.com")

	active := createTestCategory(t, db, "go", model.EstadoActivo)
	inactive := createTestCategory(t, db, "cobol", model.EstadoInactivo)
	unsubscribed := createTestCategory(t, db, "rust", model.EstadoActivo)

	older := createTestCodigo(t, db, author.ID, "older", nil)
	newer := createTestCodigo(t, db, author.ID, "newer", nil)
	hidden := createTestCodigo(t, db, author.ID, "hidden", nil)
	other := createTestCodigo(t, db, author.ID, "other", nil)

	for _, link := range [][2]int64{
		{older.ID, active.ID},
		{newer.ID, active.ID},
		{hidden.ID, inactive.ID},
		{other.ID, unsubscribed.ID},
	} {
		if err := db.LinkCategory(ctx, link[0], link[1]); err != nil {
			t.Fatal(err)
		}
	}
	for _, catID := range []int64{active.ID, inactive.ID} {
		if err := db.CreateSubscription(ctx, &model.Subscription{UserID: reader.ID, CategoryID: catID}); err != nil {
			t.Fatal(err)
		}
	}

	feed, err := db.FeedByUser(ctx, reader.ID)
	if err != nil {
		t.Fatalf("FeedByUser() error = %v", err)
	}
	if len(feed) != 2 {
		t.Fatalf("len(feed) = %d, want 2: %+v", len(feed), feed)
	}
	if feed[0].ID != newer.ID || feed[1].ID != older.ID {
		t.Errorf("feed order = [%d %d], want newest first", feed[0].ID, feed[1].ID)
	}
	if feed[0].CategoryName != "go" || feed[0].CategoryID != active.ID {
		t.Errorf("feed[0] category = %d %q", feed[0].CategoryID, feed[0].CategoryName)
	}

	empty, err := db.FeedByUser(ctx, author.ID)
	if err != nil || len(empty) != 0 {
		t.Errorf("FeedByUser() for user without subscriptions = %v, %v", empty, err)
	}
}
