// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"testing"

	"inkwell/internal/models"
)

func TestTagStoreListWithCounts(t *testing.T) {
	db := testDB(t)
	s := NewTagStore(db)

	author := fixtureUser(t, db, "test-tagcount-author")
	cat := fixtureCategory(t, db, "Tag Count Cat", "test-tagcount-cat")

	// One published and one draft post share a tag; only the published
	// one counts.
	fixturePost(t, db, &models.Post{
		Title: "Tagged published", Slug: "test-tagcount-1", Content: "body",
		Status: models.PostStatusPublished, AuthorID: author.ID, CategoryID: cat.ID,
	}, "Zcounted Tag")
	fixturePost(t, db, &models.Post{
		Title: "Tagged draft", Slug: "test-tagcount-2", Content: "body",
		Status: models.PostStatusDraft, AuthorID: author.ID, CategoryID: cat.ID,
	}, "Zcounted Tag", "Zdraft Only")

	tags, err := s.ListWithCounts()
	if err != nil {
		t.Fatalf("ListWithCounts: %v", err)
	}

	counts := map[string]int{}
	for _, tag := range tags {
		counts[tag.Slug] = tag.PostCount
	}

	if got, ok := counts["zcounted-tag"]; !ok || got != 1 {
		t.Errorf("zcounted-tag: got %d (present=%v), want 1", got, ok)
	}
	// A tag used only by drafts still appears, with a zero count.
	if got, ok := counts["zdraft-only"]; !ok || got != 0 {
		t.Errorf("zdraft-only: got %d (present=%v), want 0", got, ok)
	}
}

func TestTagStoreFindBySlug(t *testing.T) {
	db := testDB(t)
	s := NewTagStore(db)

	author := fixtureUser(t, db, "test-tagfind-author")
	cat := fixtureCategory(t, db, "Tag Find Cat", "test-tagfind-cat")
	fixturePost(t, db, &models.Post{
		Title: "Carrier", Slug: "test-tagfind-post", Content: "body",
		Status: models.PostStatusDraft, AuthorID: author.ID, CategoryID: cat.ID,
	}, "Findable")

	tag, err := s.FindBySlug("findable")
	if err != nil {
		t.Fatalf("FindBySlug: %v", err)
	}
	if tag == nil || tag.Name != "Findable" {
		t.Fatalf("expected the Findable tag, got %+v", tag)
	}

	missing, err := s.FindBySlug("test-tag-missing")
	if err != nil {
		t.Fatalf("FindBySlug (missing): %v", err)
	}
	if missing != nil {
		t.Error("expected nil for unknown slug")
	}
}
