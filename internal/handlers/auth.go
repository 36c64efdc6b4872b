// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/pquerna/otp/totp"

	"inkwell/internal/blog"
	"inkwell/internal/metrics"
	"inkwell/internal/middleware"
	"inkwell/internal/render"
	"inkwell/internal/session"
	"inkwell/internal/store"
)

// Auth serves the signup, login, 2FA verification, and logout flows.
type Auth struct {
	svc      *blog.Service
	users    *store.UserStore
	sessions *session.Store
	metrics  *metrics.Collector
	render   *render.Renderer
}

// NewAuth creates the auth handlers.
func NewAuth(svc *blog.Service, users *store.UserStore, sessions *session.Store, m *metrics.Collector, rn *render.Renderer) *Auth {
	return &Auth{svc: svc, users: users, sessions: sessions, metrics: m, render: rn}
}

// LoginForm shows the login page, or bounces straight to the dashboard
// when the visitor is already signed in.
func (h *Auth) LoginForm(w http.ResponseWriter, r *http.Request) {
	if sess := middleware.SessionFromCtx(r.Context()); sess != nil && sess.TwoFADone {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	h.render.Page(w, r, "login", &render.PageData{Title: "Log in"})
}

// Login checks the credentials and establishes a session. Accounts with
// 2FA enabled get a session marked pending and are sent to the code check;
// everyone else goes straight to the dashboard. The error message never
// reveals whether the username or the password was wrong.
func (h *Auth) Login(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(r.PostFormValue("username"))
	password := r.PostFormValue("password")

	fail := func() {
		h.render.PageStatus(w, r, http.StatusUnauthorized, "login", &render.PageData{
			Title: "Log in",
			Error: "Invalid username or password.",
			Data:  map[string]any{"Username": username},
		})
	}

	user, err := h.users.FindByUsername(username)
	if err != nil {
		slog.Error("login lookup", "error", err)
		serverError(w, r, h.render)
		return
	}
	if user == nil || !h.users.CheckPassword(user, password) {
		fail()
		return
	}

	_, err = h.sessions.Create(r.Context(), w, &session.Data{
		UserID:    user.ID,
		Username:  user.Username,
		Email:     user.Email,
		TwoFADone: !user.Has2FA(),
	})
	if err != nil {
		slog.Error("create session", "error", err)
		serverError(w, r, h.render)
		return
	}

	if user.Has2FA() {
		http.Redirect(w, r, "/login/2fa", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// TwoFAForm shows the TOTP code prompt for a session pending verification.
func (h *Auth) TwoFAForm(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	if sess.TwoFADone {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	h.render.Page(w, r, "twofa_verify", &render.PageData{Title: "Two-factor check"})
}

// TwoFAVerify validates the submitted TOTP code and completes the login.
func (h *Auth) TwoFAVerify(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	if sess.TwoFADone {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}

	user, err := h.users.FindByID(sess.UserID)
	if err != nil {
		slog.Error("2fa lookup", "error", err)
		serverError(w, r, h.render)
		return
	}
	if user == nil || user.TOTPSecret == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	code := strings.TrimSpace(r.PostFormValue("code"))
	if !totp.Validate(code, *user.TOTPSecret) {
		h.render.PageStatus(w, r, http.StatusUnauthorized, "twofa_verify", &render.PageData{
			Title: "Two-factor check",
			Error: "That code did not match. Try again.",
		})
		return
	}

	sess.TwoFADone = true
	if err := h.sessions.Update(r.Context(), r, sess); err != nil {
		slog.Error("update session", "error", err)
		serverError(w, r, h.render)
		return
	}
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// SignupForm shows the registration page.
func (h *Auth) SignupForm(w http.ResponseWriter, r *http.Request) {
	if sess := middleware.SessionFromCtx(r.Context()); sess != nil && sess.TwoFADone {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	h.render.Page(w, r, "signup", &render.PageData{
		Title: "Sign up",
		Data:  signupData(RegisterForm{}, nil),
	})
}

// RegisterForm mirrors the signup form fields for re-rendering on error.
type RegisterForm struct {
	Username string
	Email    string
}

// Signup registers a new account and logs it straight in.
func (h *Auth) Signup(w http.ResponseWriter, r *http.Request) {
	form := RegisterForm{
		Username: strings.TrimSpace(r.PostFormValue("username")),
		Email:    strings.TrimSpace(r.PostFormValue("email")),
	}

	user, err := h.svc.Register(blog.RegisterInput{
		Username:        form.Username,
		Email:           form.Email,
		Password:        r.PostFormValue("password"),
		PasswordConfirm: r.PostFormValue("password_confirm"),
	})
	if err != nil {
		if verr, ok := blog.AsValidation(err); ok {
			h.render.PageStatus(w, r, http.StatusUnprocessableEntity, "signup", &render.PageData{
				Title: "Sign up",
				Data:  signupData(form, verr),
			})
			return
		}
		slog.Error("register", "error", err)
		serverError(w, r, h.render)
		return
	}

	h.metrics.RecordRegistration()

	// Auto-login: registration ends with an authenticated session.
	_, err = h.sessions.Create(r.Context(), w, &session.Data{
		UserID:    user.ID,
		Username:  user.Username,
		Email:     user.Email,
		TwoFADone: true,
	})
	if err != nil {
		slog.Error("create session", "error", err)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Logout destroys the session and returns to the front page.
func (h *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Destroy(r.Context(), w, r); err != nil {
		slog.Error("destroy session", "error", err)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func signupData(form RegisterForm, verr *blog.ValidationError) map[string]any {
	fieldErrors := map[string]string{}
	if verr != nil {
		fieldErrors[verr.Field] = verr.Message
	}
	return map[string]any{
		"Form": map[string]string{
			"username": form.Username,
			"email":    form.Email,
		},
		"FieldErrors": fieldErrors,
	}
}
