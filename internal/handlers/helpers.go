// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers for the public site, the
// auth flows, and the member area. Handlers decode requests, call the
// blog service, and render templates; the rules live in internal/blog.
package handlers

import (
	"net/http"
	"strconv"

	"inkwell/internal/blog"
	"inkwell/internal/middleware"
	"inkwell/internal/render"
)

// viewerFrom derives the blog viewer from the request's session, if any.
// A session still waiting on its 2FA check counts as anonymous.
func viewerFrom(r *http.Request) blog.Viewer {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil || !sess.TwoFADone {
		return blog.Anonymous()
	}
	return blog.Viewer{ID: sess.UserID, Username: sess.Username, Authenticated: true}
}

// pageParam reads the ?page= query parameter, defaulting to 1.
func pageParam(r *http.Request) int {
	n, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func notFound(w http.ResponseWriter, r *http.Request, rn *render.Renderer) {
	rn.PageStatus(w, r, http.StatusNotFound, "error", &render.PageData{
		Title: "Not found",
		Data: map[string]any{
			"Heading": "Page not found",
			"Message": "The page you are looking for does not exist.",
		},
	})
}

func forbidden(w http.ResponseWriter, r *http.Request, rn *render.Renderer) {
	rn.PageStatus(w, r, http.StatusForbidden, "error", &render.PageData{
		Title: "Forbidden",
		Data: map[string]any{
			"Heading": "Forbidden",
			"Message": "You do not have permission to do that.",
		},
	})
}

func serverError(w http.ResponseWriter, r *http.Request, rn *render.Renderer) {
	rn.PageStatus(w, r, http.StatusInternalServerError, "error", &render.PageData{
		Title: "Error",
		Data: map[string]any{
			"Heading": "Something went wrong",
			"Message": "An unexpected error occurred. Please try again.",
		},
	})
}
