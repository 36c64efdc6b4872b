// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/redis/go-redis/v9"

	"inkwell/internal/blog"
	"inkwell/internal/handlers"
	"inkwell/internal/metrics"
	"inkwell/internal/render"
	"inkwell/internal/session"
	"inkwell/internal/store"
)

// testRouter wires the full route table. The Valkey client points nowhere;
// session loading treats lookup errors as anonymous, and none of the routes
// exercised here touch the database.
func testRouter(t *testing.T) http.Handler {
	t.Helper()

	rn, err := render.New()
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}

	valkey := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	sessions := session.NewStore(valkey, false)

	svc := blog.NewService(
		store.NewPostStore(nil),
		store.NewCategoryStore(nil),
		store.NewTagStore(nil),
		store.NewUserStore(nil),
	)
	collector := metrics.NewCollector()

	return New(Deps{
		Public:   handlers.NewPublic(svc, rn, nil),
		Auth:     handlers.NewAuth(svc, store.NewUserStore(nil), sessions, collector, rn),
		Member:   handlers.NewMember(svc, store.NewUserStore(nil), rn, nil, nil, collector),
		Sessions: sessions,
		Metrics:  collector,
	})
}

func TestHealthEndpoint(t *testing.T) {
	r := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	if rec.Body.String() != "ok" {
		t.Errorf("body: got %q, want ok", rec.Body.String())
	}
}

func TestMetricsEndpoint(t *testing.T) {
	r := testRouter(t)

	// Generate one measured request first.
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)

	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "inkwell_http_requests_total") {
		t.Error("expected request metrics in the scrape output")
	}
}

func TestDashboardRedirectsAnonymous(t *testing.T) {
	r := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/login" {
		t.Errorf("redirect: got %q, want /login", loc)
	}
}

func TestMutationsRequireCSRF(t *testing.T) {
	r := testRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("posting without a CSRF token: got %d, want 403", rec.Code)
	}
}

func TestSecurityHeadersApplied(t *testing.T) {
	r := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options: got %q", got)
	}
}

func TestStaticAssetsServed(t *testing.T) {
	r := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/static/site.css", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "text/css") {
		t.Errorf("content type: got %q", ct)
	}
}
