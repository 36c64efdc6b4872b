// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/base64"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"

	"inkwell/internal/blog"
	"inkwell/internal/cache"
	"inkwell/internal/metrics"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/render"
	"inkwell/internal/storage"
	"inkwell/internal/store"
)

// maxUploadSize caps featured-image uploads at 10 MB.
const maxUploadSize = 10 << 20

// Member serves the authenticated area: the dashboard, the post editor,
// and the account security page. All routes are behind RequireAuth.
type Member struct {
	svc     *blog.Service
	users   *store.UserStore
	render  *render.Renderer
	cache   *cache.PageCache
	storage *storage.Client
	metrics *metrics.Collector
}

// NewMember creates the member-area handlers. cache and storage may be nil.
func NewMember(svc *blog.Service, users *store.UserStore, rn *render.Renderer, pc *cache.PageCache, st *storage.Client, m *metrics.Collector) *Member {
	return &Member{svc: svc, users: users, render: rn, cache: pc, storage: st, metrics: m}
}

// invalidatePages drops all cached public pages after a mutation. A post
// change can affect the home listing, facet counts, and every category and
// tag page it appears on, so the cache is cleared wholesale.
func (h *Member) invalidatePages(r *http.Request) {
	if h.cache != nil {
		h.cache.InvalidateAll(r.Context())
	}
}

// Dashboard lists the member's own posts, drafts included, most recently
// updated first.
func (h *Member) Dashboard(w http.ResponseWriter, r *http.Request) {
	posts, err := h.svc.Dashboard(viewerFrom(r))
	if err != nil {
		slog.Error("dashboard", "error", err)
		serverError(w, r, h.render)
		return
	}
	h.render.Page(w, r, "dashboard", &render.PageData{
		Title: "Dashboard",
		Data:  map[string]any{"Posts": posts},
	})
}

// NewPostForm shows the empty post editor.
func (h *Member) NewPostForm(w http.ResponseWriter, r *http.Request) {
	data, err := h.postFormData(blog.PostInput{Status: models.PostStatusDraft}, nil, false, "/post")
	if err != nil {
		serverError(w, r, h.render)
		return
	}
	h.render.Page(w, r, "post_form", &render.PageData{Title: "New post", Data: data})
}

// CreatePost handles the post editor submission for a new post.
func (h *Member) CreatePost(w http.ResponseWriter, r *http.Request) {
	in, ok := h.decodePostForm(w, r, nil)
	if !ok {
		return
	}

	post, err := h.svc.CreatePost(viewerFrom(r), in)
	if err != nil {
		if verr, ok := blog.AsValidation(err); ok {
			data, derr := h.postFormData(in, verr, false, "/post")
			if derr != nil {
				serverError(w, r, h.render)
				return
			}
			h.render.PageStatus(w, r, http.StatusUnprocessableEntity, "post_form", &render.PageData{Title: "New post", Data: data})
			return
		}
		slog.Error("create post", "error", err)
		serverError(w, r, h.render)
		return
	}

	h.metrics.RecordPostCreated()
	h.invalidatePages(r)
	http.Redirect(w, r, "/post/"+post.Slug, http.StatusSeeOther)
}

// EditPostForm shows the editor prefilled with an existing post. Only the
// author gets the form; other members get 403, missing posts 404.
func (h *Member) EditPostForm(w http.ResponseWriter, r *http.Request) {
	postSlug := chi.URLParam(r, "slug")
	viewer := viewerFrom(r)

	post, err := h.svc.GetPost(viewer, postSlug)
	if err != nil {
		if errors.Is(err, blog.ErrNotFound) {
			notFound(w, r, h.render)
			return
		}
		slog.Error("edit form", "slug", postSlug, "error", err)
		serverError(w, r, h.render)
		return
	}
	if !blog.CanMutate(viewer, post) {
		forbidden(w, r, h.render)
		return
	}

	in := blog.PostInput{
		Title:      post.Title,
		Slug:       post.Slug,
		Content:    post.Content,
		Status:     post.Status,
		CategoryID: post.CategoryID.String(),
		Tags:       joinTagNames(post.Tags),
	}
	if post.Excerpt != nil {
		in.Excerpt = *post.Excerpt
	}
	if post.FeaturedImage != nil {
		in.FeaturedImage = *post.FeaturedImage
	}

	data, err := h.postFormData(in, nil, true, "/post/"+post.Slug+"/edit")
	if err != nil {
		serverError(w, r, h.render)
		return
	}
	h.render.Page(w, r, "post_form", &render.PageData{Title: "Edit post", Data: data})
}

// UpdatePost handles the post editor submission for an existing post.
func (h *Member) UpdatePost(w http.ResponseWriter, r *http.Request) {
	postSlug := chi.URLParam(r, "slug")

	// An upload replaces the featured image; otherwise the current one is
	// carried through the hidden form state.
	existing, err := h.svc.GetPost(viewerFrom(r), postSlug)
	if err != nil {
		if errors.Is(err, blog.ErrNotFound) {
			notFound(w, r, h.render)
			return
		}
		serverError(w, r, h.render)
		return
	}

	var current *string
	if existing != nil {
		current = existing.FeaturedImage
	}
	in, ok := h.decodePostForm(w, r, current)
	if !ok {
		return
	}

	post, err := h.svc.UpdatePost(viewerFrom(r), postSlug, in)
	if err != nil {
		switch {
		case errors.Is(err, blog.ErrNotFound):
			notFound(w, r, h.render)
		case errors.Is(err, blog.ErrForbidden):
			forbidden(w, r, h.render)
		default:
			if verr, ok := blog.AsValidation(err); ok {
				data, derr := h.postFormData(in, verr, true, "/post/"+postSlug+"/edit")
				if derr != nil {
					serverError(w, r, h.render)
					return
				}
				h.render.PageStatus(w, r, http.StatusUnprocessableEntity, "post_form", &render.PageData{Title: "Edit post", Data: data})
				return
			}
			slog.Error("update post", "slug", postSlug, "error", err)
			serverError(w, r, h.render)
		}
		return
	}

	h.metrics.RecordPostUpdated()
	h.invalidatePages(r)
	http.Redirect(w, r, "/post/"+post.Slug, http.StatusSeeOther)
}

// DeletePostConfirm shows the delete confirmation page.
func (h *Member) DeletePostConfirm(w http.ResponseWriter, r *http.Request) {
	postSlug := chi.URLParam(r, "slug")
	viewer := viewerFrom(r)

	post, err := h.svc.GetPost(viewer, postSlug)
	if err != nil {
		if errors.Is(err, blog.ErrNotFound) {
			notFound(w, r, h.render)
			return
		}
		serverError(w, r, h.render)
		return
	}
	if !blog.CanMutate(viewer, post) {
		forbidden(w, r, h.render)
		return
	}

	h.render.Page(w, r, "post_confirm_delete", &render.PageData{
		Title: "Delete post",
		Data:  map[string]any{"Post": post},
	})
}

// DeletePost removes the post. The category and tags survive.
func (h *Member) DeletePost(w http.ResponseWriter, r *http.Request) {
	postSlug := chi.URLParam(r, "slug")

	if err := h.svc.DeletePost(viewerFrom(r), postSlug); err != nil {
		switch {
		case errors.Is(err, blog.ErrNotFound):
			notFound(w, r, h.render)
		case errors.Is(err, blog.ErrForbidden):
			forbidden(w, r, h.render)
		default:
			slog.Error("delete post", "slug", postSlug, "error", err)
			serverError(w, r, h.render)
		}
		return
	}

	h.metrics.RecordPostDeleted()
	h.invalidatePages(r)
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// --- Security page (TOTP) ---

// Security shows the account security page with the 2FA state.
func (h *Member) Security(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	h.render.Page(w, r, "security", &render.PageData{
		Title: "Security",
		Data:  map[string]any{"TOTPEnabled": user.TOTPEnabled},
	})
}

// TwoFASetup generates a TOTP secret, stores it unconfirmed, and shows the
// enrollment QR code. Enabling only happens after a valid code confirms
// the authenticator actually holds the secret.
func (h *Member) TwoFASetup(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	if user.TOTPEnabled {
		http.Redirect(w, r, "/dashboard/security", http.StatusSeeOther)
		return
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      "Inkwell",
		AccountName: user.Email,
	})
	if err != nil {
		slog.Error("totp generate", "error", err)
		serverError(w, r, h.render)
		return
	}

	if err := h.users.SetTOTPSecret(user.ID, key.Secret()); err != nil {
		slog.Error("store totp secret", "error", err)
		serverError(w, r, h.render)
		return
	}

	png, err := qrcode.Encode(key.URL(), qrcode.Medium, 256)
	if err != nil {
		slog.Error("qr encode", "error", err)
		serverError(w, r, h.render)
		return
	}

	h.render.Page(w, r, "security", &render.PageData{
		Title: "Security",
		Data: map[string]any{
			"TOTPEnabled": false,
			"QRCode":      base64.StdEncoding.EncodeToString(png),
			"Secret":      key.Secret(),
		},
	})
}

// TwoFAConfirm validates the first code against the stored secret and
// flips 2FA on.
func (h *Member) TwoFAConfirm(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	if user.TOTPSecret == nil {
		http.Redirect(w, r, "/dashboard/security", http.StatusSeeOther)
		return
	}

	code := strings.TrimSpace(r.PostFormValue("code"))
	if !totp.Validate(code, *user.TOTPSecret) {
		h.render.PageStatus(w, r, http.StatusUnprocessableEntity, "security", &render.PageData{
			Title: "Security",
			Error: "That code did not match. Scan the QR code again and retry.",
			Data:  map[string]any{"TOTPEnabled": false},
		})
		return
	}

	if err := h.users.EnableTOTP(user.ID); err != nil {
		slog.Error("enable totp", "error", err)
		serverError(w, r, h.render)
		return
	}
	http.Redirect(w, r, "/dashboard/security", http.StatusSeeOther)
}

// TwoFADisable turns 2FA off and clears the stored secret.
func (h *Member) TwoFADisable(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	if err := h.users.DisableTOTP(user.ID); err != nil {
		slog.Error("disable totp", "error", err)
		serverError(w, r, h.render)
		return
	}
	http.Redirect(w, r, "/dashboard/security", http.StatusSeeOther)
}

// --- helpers ---

func (h *Member) currentUser(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return nil, false
	}
	user, err := h.users.FindByID(sess.UserID)
	if err != nil {
		slog.Error("load user", "error", err)
		serverError(w, r, h.render)
		return nil, false
	}
	if user == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return nil, false
	}
	return user, true
}

// decodePostForm parses the (multipart) editor form into a PostInput,
// uploading a new featured image when one was attached. currentImage is
// the image to keep when nothing new was uploaded.
func (h *Member) decodePostForm(w http.ResponseWriter, r *http.Request, currentImage *string) (blog.PostInput, bool) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		h.render.PageStatus(w, r, http.StatusBadRequest, "error", &render.PageData{
			Title: "Bad request",
			Data: map[string]any{
				"Heading": "Bad request",
				"Message": "The form could not be read. The upload may be too large.",
			},
		})
		return blog.PostInput{}, false
	}

	in := blog.PostInput{
		Title:      r.PostFormValue("title"),
		Slug:       r.PostFormValue("slug"),
		Excerpt:    r.PostFormValue("excerpt"),
		Content:    r.PostFormValue("content"),
		Status:     models.PostStatus(r.PostFormValue("status")),
		CategoryID: r.PostFormValue("category"),
		Tags:       r.PostFormValue("tags"),
	}
	if currentImage != nil {
		in.FeaturedImage = *currentImage
	}

	if h.storage == nil {
		return in, true
	}

	file, header, err := r.FormFile("featured_image")
	if err != nil {
		// No file attached; keep the current image.
		return in, true
	}
	defer file.Close()

	url, err := h.storage.UploadImage(r.Context(), header.Filename, header.Header.Get("Content-Type"), file, header.Size)
	if err != nil {
		slog.Error("featured image upload", "error", err)
		h.render.PageStatus(w, r, http.StatusBadGateway, "error", &render.PageData{
			Title: "Upload failed",
			Data: map[string]any{
				"Heading": "Upload failed",
				"Message": "The featured image could not be stored. Try again.",
			},
		})
		return blog.PostInput{}, false
	}
	in.FeaturedImage = url
	return in, true
}

// postFormData assembles the template data for the post editor.
func (h *Member) postFormData(in blog.PostInput, verr *blog.ValidationError, isEdit bool, action string) (map[string]any, error) {
	categories, err := h.svc.Categories()
	if err != nil {
		slog.Error("load categories", "error", err)
		return nil, err
	}

	fieldErrors := map[string]string{}
	if verr != nil {
		fieldErrors[verr.Field] = verr.Message
	}

	return map[string]any{
		"Form": map[string]string{
			"title":          in.Title,
			"slug":           in.Slug,
			"excerpt":        in.Excerpt,
			"content":        in.Content,
			"status":         string(in.Status),
			"category":       in.CategoryID,
			"tags":           in.Tags,
			"featured_image": in.FeaturedImage,
		},
		"FieldErrors":   fieldErrors,
		"IsEdit":        isEdit,
		"Action":        action,
		"Categories":    categories,
		"UploadEnabled": h.storage != nil,
	}, nil
}

func joinTagNames(tags []models.Tag) string {
	names := make([]string, len(tags))
	for i, t := range tags {
		names[i] = t.Name
	}
	return strings.Join(names, ", ")
}
