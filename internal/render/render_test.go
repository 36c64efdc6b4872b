// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package render

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"inkwell/internal/blog"
	"inkwell/internal/models"
)

func testRenderer(t *testing.T) *Renderer {
	t.Helper()
	rn, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return rn
}

func listingData(posts []models.Post) map[string]any {
	p := &blog.Page{Posts: posts, Number: 1, TotalCount: len(posts), TotalPages: 1}
	return map[string]any{
		"Page":        p,
		"Categories":  []models.Category{{Name: "General", Slug: "general", PostCount: 2}},
		"Tags":        []models.Tag{{Name: "Go", Slug: "go", PostCount: 0}},
		"Query":       "",
		"FilterQuery": "",
	}
}

func TestRenderHome(t *testing.T) {
	rn := testRenderer(t)

	excerpt := "A short summary."
	posts := []models.Post{{
		ID:           uuid.New(),
		Title:        "First Post",
		Slug:         "first-post",
		Excerpt:      &excerpt,
		Status:       models.PostStatusPublished,
		CreatedAt:    time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
		AuthorName:   "writer",
		CategoryName: "General",
		CategorySlug: "general",
		Tags:         []models.Tag{{Name: "Go", Slug: "go"}},
	}}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	html, err := rn.Render(req, "home", &PageData{Title: "Latest posts", Data: listingData(posts)})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := string(html)

	for _, want := range []string{
		"First Post",
		`href="/post/first-post"`,
		"A short summary.",
		"Mar 14, 2026",
		`href="/category/general"`,
		`href="/tag/go"`,
		// Zero-count facets still render.
		`<span class="count">0</span>`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("home output missing %q", want)
		}
	}
}

func TestRenderHomeEmpty(t *testing.T) {
	rn := testRenderer(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	html, err := rn.Render(req, "home", &PageData{Data: listingData(nil)})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(string(html), "No posts found.") {
		t.Error("empty listing should say so")
	}
}

func TestRenderPostDetailMarkdown(t *testing.T) {
	rn := testRenderer(t)

	post := &models.Post{
		Title:        "Markdown Post",
		Slug:         "markdown-post",
		Content:      "# Hello\n\n<script>alert(1)</script>\n\n**bold**",
		Status:       models.PostStatusPublished,
		CreatedAt:    time.Now(),
		AuthorName:   "writer",
		CategoryName: "General",
		CategorySlug: "general",
	}

	req := httptest.NewRequest(http.MethodGet, "/post/markdown-post", nil)
	html, err := rn.Render(req, "post_detail", &PageData{
		Title: post.Title,
		Data:  map[string]any{"Post": post, "CanEdit": false},
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := string(html)

	if !strings.Contains(out, "<strong>bold</strong>") {
		t.Error("markdown not rendered")
	}
	if strings.Contains(out, "<script>") {
		t.Error("unsanitized script in output")
	}
	if strings.Contains(out, "Draft") {
		t.Error("published post should not carry a draft badge")
	}
	// Edit controls hidden for non-authors.
	if strings.Contains(out, "/edit") {
		t.Error("edit link shown without permission")
	}
}

func TestRenderDraftBadgeAndEditLinks(t *testing.T) {
	rn := testRenderer(t)

	post := &models.Post{
		Title:        "My Draft",
		Slug:         "my-draft",
		Content:      "wip",
		Status:       models.PostStatusDraft,
		CreatedAt:    time.Now(),
		AuthorName:   "writer",
		CategoryName: "General",
		CategorySlug: "general",
	}

	req := httptest.NewRequest(http.MethodGet, "/post/my-draft", nil)
	html, err := rn.Render(req, "post_detail", &PageData{
		Data: map[string]any{"Post": post, "CanEdit": true},
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := string(html)

	if !strings.Contains(out, "Draft") {
		t.Error("draft badge missing")
	}
	if !strings.Contains(out, "/post/my-draft/edit") {
		t.Error("edit link missing for the author")
	}
}

func TestRenderStandaloneLogin(t *testing.T) {
	rn := testRenderer(t)

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	html, err := rn.Render(req, "login", &PageData{Title: "Log in", Error: "Invalid username or password."})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := string(html)

	// Standalone pages carry their own document shell.
	if !strings.Contains(out, "<!DOCTYPE html>") {
		t.Error("standalone page missing doctype")
	}
	if !strings.Contains(out, "Invalid username or password.") {
		t.Error("form error not shown")
	}
	if strings.Count(out, "<!DOCTYPE html>") != 1 {
		t.Error("page wrapped in base layout twice")
	}
}

func TestRenderUnknownTemplate(t *testing.T) {
	rn := testRenderer(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, err := rn.Render(req, "no-such-template", &PageData{}); err == nil {
		t.Error("expected an error for an unknown template")
	}
}
