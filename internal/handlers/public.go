// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"inkwell/internal/blog"
	"inkwell/internal/cache"
	"inkwell/internal/render"
	"inkwell/internal/store"
)

// Public serves the reader-facing pages: the filtered home listing, single
// posts, and the category and tag pages. Pages for anonymous visitors are
// served from the Valkey page cache when possible; any request with a
// session bypasses the cache because draft visibility depends on the viewer.
type Public struct {
	svc    *blog.Service
	render *render.Renderer
	cache  *cache.PageCache
}

// NewPublic creates the public handlers. cache may be nil (caching disabled).
func NewPublic(svc *blog.Service, rn *render.Renderer, pc *cache.PageCache) *Public {
	return &Public{svc: svc, render: rn, cache: pc}
}

// cacheable reports whether this request may be served from or stored in
// the page cache.
func (h *Public) cacheable(r *http.Request) bool {
	return h.cache != nil && !viewerFrom(r).Authenticated
}

func (h *Public) serveCached(w http.ResponseWriter, r *http.Request, key string) bool {
	if !h.cacheable(r) {
		return false
	}
	html, ok := h.cache.Get(r.Context(), key)
	if !ok {
		return false
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(html)
	return true
}

func (h *Public) renderAndCache(w http.ResponseWriter, r *http.Request, key, name string, data *render.PageData) {
	html, err := h.render.Render(r, name, data)
	if err != nil {
		slog.Error("render page", "template", name, "error", err)
		serverError(w, r, h.render)
		return
	}
	if h.cacheable(r) {
		h.cache.Set(r.Context(), key, html)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(html)
}

// Home renders the post listing. The q, category, and tag query parameters
// compose conjunctively; the free-text q matches title, content, category
// name, or any tag name, case-insensitively. Unknown filter values just
// produce an empty page.
func (h *Public) Home(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	key := "home:" + q.Encode()
	if h.serveCached(w, r, key) {
		return
	}

	filters := store.Filters{
		Query:        strings.TrimSpace(q.Get("q")),
		CategorySlug: strings.TrimSpace(q.Get("category")),
		TagSlug:      strings.TrimSpace(q.Get("tag")),
	}

	page, err := h.svc.ListPosts(filters, pageParam(r))
	if err != nil {
		slog.Error("list posts", "error", err)
		serverError(w, r, h.render)
		return
	}

	categories, tags, err := h.svc.Facets()
	if err != nil {
		slog.Error("load facets", "error", err)
		serverError(w, r, h.render)
		return
	}

	h.renderAndCache(w, r, key, "home", &render.PageData{
		Title: "Latest posts",
		Data: map[string]any{
			"Page":        page,
			"Categories":  categories,
			"Tags":        tags,
			"Query":       filters.Query,
			"FilterQuery": filterQuery(filters),
		},
	})
}

// PostDetail renders a single post by slug. Drafts answer 404 to anonymous
// visitors; authenticated members see them with a draft badge.
func (h *Public) PostDetail(w http.ResponseWriter, r *http.Request) {
	postSlug := chi.URLParam(r, "slug")
	key := cache.PostKey(postSlug)
	if h.serveCached(w, r, key) {
		return
	}

	viewer := viewerFrom(r)
	post, err := h.svc.GetPost(viewer, postSlug)
	if err != nil {
		if errors.Is(err, blog.ErrNotFound) {
			notFound(w, r, h.render)
			return
		}
		slog.Error("get post", "slug", postSlug, "error", err)
		serverError(w, r, h.render)
		return
	}

	h.renderAndCache(w, r, key, "post_detail", &render.PageData{
		Title: post.Title,
		Data: map[string]any{
			"Post":    post,
			"CanEdit": blog.CanMutate(viewer, post),
		},
	})
}

// CategoryDetail renders a category page: a hard slug lookup, 404 when the
// category does not exist, then its published posts.
func (h *Public) CategoryDetail(w http.ResponseWriter, r *http.Request) {
	categorySlug := chi.URLParam(r, "slug")
	key := "category:" + categorySlug + ":" + r.URL.Query().Encode()
	if h.serveCached(w, r, key) {
		return
	}

	category, page, err := h.svc.CategoryPage(categorySlug, pageParam(r))
	if err != nil {
		if errors.Is(err, blog.ErrNotFound) {
			notFound(w, r, h.render)
			return
		}
		slog.Error("category page", "slug", categorySlug, "error", err)
		serverError(w, r, h.render)
		return
	}

	categories, tags, err := h.svc.Facets()
	if err != nil {
		slog.Error("load facets", "error", err)
		serverError(w, r, h.render)
		return
	}

	h.renderAndCache(w, r, key, "category_detail", &render.PageData{
		Title: category.Name,
		Data: map[string]any{
			"Category":    category,
			"Page":        page,
			"Categories":  categories,
			"Tags":        tags,
			"FilterQuery": "",
		},
	})
}

// TagDetail renders a tag page, the tag-shaped twin of CategoryDetail.
func (h *Public) TagDetail(w http.ResponseWriter, r *http.Request) {
	tagSlug := chi.URLParam(r, "slug")
	key := "tag:" + tagSlug + ":" + r.URL.Query().Encode()
	if h.serveCached(w, r, key) {
		return
	}

	tag, page, err := h.svc.TagPage(tagSlug, pageParam(r))
	if err != nil {
		if errors.Is(err, blog.ErrNotFound) {
			notFound(w, r, h.render)
			return
		}
		slog.Error("tag page", "slug", tagSlug, "error", err)
		serverError(w, r, h.render)
		return
	}

	categories, tags, err := h.svc.Facets()
	if err != nil {
		slog.Error("load facets", "error", err)
		serverError(w, r, h.render)
		return
	}

	h.renderAndCache(w, r, key, "tag_detail", &render.PageData{
		Title: tag.Name,
		Data: map[string]any{
			"Tag":         tag,
			"Page":        page,
			"Categories":  categories,
			"Tags":        tags,
			"FilterQuery": "",
		},
	})
}

// NotFound is the router's fallback for unknown paths.
func (h *Public) NotFound(w http.ResponseWriter, r *http.Request) {
	notFound(w, r, h.render)
}

// filterQuery encodes the active filters for pagination links, with a
// trailing "&" so templates can append page=N.
func filterQuery(f store.Filters) string {
	v := url.Values{}
	if f.Query != "" {
		v.Set("q", f.Query)
	}
	if f.CategorySlug != "" {
		v.Set("category", f.CategorySlug)
	}
	if f.TagSlug != "" {
		v.Set("tag", f.TagSlug)
	}
	if len(v) == 0 {
		return ""
	}
	return v.Encode() + "&"
}
