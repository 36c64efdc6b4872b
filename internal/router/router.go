// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router assembles the HTTP route table and middleware chain.
package router

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"

	"inkwell/internal/handlers"
	"inkwell/internal/metrics"
	"inkwell/internal/middleware"
	"inkwell/internal/session"
	"inkwell/web"
)

// Deps bundles everything the router wires together.
type Deps struct {
	Public   *handlers.Public
	Auth     *handlers.Auth
	Member   *handlers.Member
	Sessions *session.Store
	Metrics  *metrics.Collector
}

// New builds the chi router with the full middleware chain: recovery,
// logging, metrics, security headers, session loading, CSRF, and rate
// limiting. Auth endpoints get a stricter rate bucket than the rest of
// the site.
func New(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(d.Metrics.Middleware)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.LoadSession(d.Sessions))
	r.Use(middleware.CSRF)

	siteLimiter := middleware.NewRateLimiter(300)
	authLimiter := middleware.NewRateLimiter(10)

	// Public pages.
	r.Group(func(r chi.Router) {
		r.Use(siteLimiter.Middleware)

		r.Get("/", d.Public.Home)
		r.Get("/post/{slug}", d.Public.PostDetail)
		r.Get("/category/{slug}", d.Public.CategoryDetail)
		r.Get("/tag/{slug}", d.Public.TagDetail)
	})

	// Auth flows, throttled harder against credential stuffing.
	r.Group(func(r chi.Router) {
		r.Use(authLimiter.Middleware)

		r.Get("/signup", d.Auth.SignupForm)
		r.Post("/signup", d.Auth.Signup)
		r.Get("/login", d.Auth.LoginForm)
		r.Post("/login", d.Auth.Login)
		r.Get("/login/2fa", d.Auth.TwoFAForm)
		r.Post("/login/2fa", d.Auth.TwoFAVerify)
		r.Post("/logout", d.Auth.Logout)
	})

	// Member area.
	r.Group(func(r chi.Router) {
		r.Use(siteLimiter.Middleware)
		r.Use(middleware.RequireAuth)

		r.Get("/dashboard", d.Member.Dashboard)
		r.Get("/dashboard/security", d.Member.Security)
		r.Post("/dashboard/security/2fa/setup", d.Member.TwoFASetup)
		r.Post("/dashboard/security/2fa", d.Member.TwoFAConfirm)
		r.Post("/dashboard/security/2fa/disable", d.Member.TwoFADisable)

		r.Get("/post/new", d.Member.NewPostForm)
		r.Post("/post", d.Member.CreatePost)
		r.Get("/post/{slug}/edit", d.Member.EditPostForm)
		r.Post("/post/{slug}/edit", d.Member.UpdatePost)
		r.Get("/post/{slug}/delete", d.Member.DeletePostConfirm)
		r.Post("/post/{slug}/delete", d.Member.DeletePost)
	})

	// Operational endpoints, outside the rate limiters.
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())

	// Embedded static assets.
	staticFS, _ := fs.Sub(web.StaticFS, "static")
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	r.NotFound(d.Public.NotFound)

	return r
}
