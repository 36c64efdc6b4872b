// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"errors"
	"testing"

	"inkwell/internal/models"
)

func TestCategoryStoreListWithCounts(t *testing.T) {
	db := testDB(t)
	s := NewCategoryStore(db)

	author := fixtureUser(t, db, "test-catcount-author")
	empty := fixtureCategory(t, db, "AAA Empty Zcount", "test-catcount-empty")
	busy := fixtureCategory(t, db, "BBB Busy Zcount", "test-catcount-busy")

	fixturePost(t, db, &models.Post{
		Title: "Counted", Slug: "test-catcount-1", Content: "body",
		Status: models.PostStatusPublished, AuthorID: author.ID, CategoryID: busy.ID,
	})
	fixturePost(t, db, &models.Post{
		Title: "Not counted", Slug: "test-catcount-2", Content: "body",
		Status: models.PostStatusDraft, AuthorID: author.ID, CategoryID: busy.ID,
	})

	cats, err := s.ListWithCounts()
	if err != nil {
		t.Fatalf("ListWithCounts: %v", err)
	}

	var emptyCount, busyCount = -1, -1
	var emptyIdx, busyIdx int
	for i, c := range cats {
		switch c.ID {
		case empty.ID:
			emptyCount, emptyIdx = c.PostCount, i
		case busy.ID:
			busyCount, busyIdx = c.PostCount, i
		}
	}

	// Zero-count categories still appear in the list.
	if emptyCount != 0 {
		t.Errorf("empty category count: got %d, want 0", emptyCount)
	}
	// Drafts do not count.
	if busyCount != 1 {
		t.Errorf("busy category count: got %d, want 1 (draft excluded)", busyCount)
	}
	// Sorted by name ascending.
	if emptyIdx > busyIdx {
		t.Error("expected name-ascending order (AAA before BBB)")
	}
}

func TestCategoryStoreFindBySlug(t *testing.T) {
	db := testDB(t)
	s := NewCategoryStore(db)

	created := fixtureCategory(t, db, "Find Me Cat", "test-catfind")

	got, err := s.FindBySlug("test-catfind")
	if err != nil {
		t.Fatalf("FindBySlug: %v", err)
	}
	if got == nil || got.ID != created.ID {
		t.Fatal("expected the created category")
	}

	missing, err := s.FindBySlug("test-cat-missing")
	if err != nil {
		t.Fatalf("FindBySlug (missing): %v", err)
	}
	if missing != nil {
		t.Error("expected nil for unknown slug")
	}
}

func TestCategoryStoreDeleteProtected(t *testing.T) {
	db := testDB(t)
	s := NewCategoryStore(db)

	author := fixtureUser(t, db, "test-catdel-author")
	cat := fixtureCategory(t, db, "Protected Cat", "test-catdel")

	fixturePost(t, db, &models.Post{
		Title: "Blocker", Slug: "test-catdel-post", Content: "body",
		Status: models.PostStatusDraft, AuthorID: author.ID, CategoryID: cat.ID,
	})

	// The FK is RESTRICT: a category with posts cannot be deleted.
	err := s.Delete(cat.ID)
	if !errors.Is(err, ErrCategoryInUse) {
		t.Fatalf("Delete: got %v, want ErrCategoryInUse", err)
	}

	if got, _ := s.FindBySlug("test-catdel"); got == nil {
		t.Error("category must still exist after the blocked delete")
	}
}

func TestCategoryStoreDeleteEmpty(t *testing.T) {
	db := testDB(t)
	s := NewCategoryStore(db)

	cat, err := s.Create("Short Lived", "test-catdel-empty")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	t.Cleanup(func() { cleanCategories(t, db, "test-catdel-empty") })

	if err := s.Delete(cat.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got, _ := s.FindBySlug("test-catdel-empty"); got != nil {
		t.Error("expected the category to be gone")
	}
}
