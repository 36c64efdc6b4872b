// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// session_test.go exercises sessions against a real Valkey instance.
// Tests are skipped if Valkey is not available.
package session

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func testStore(t *testing.T) *Store {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", envOr("VALKEY_HOST", "localhost"), envOr("VALKEY_PORT", "6379")),
		Password: os.Getenv("VALKEY_PASSWORD"),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping integration test: Valkey not reachable: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	return NewStore(client, false)
}

// requestWithCookies copies the session cookie from a response recorder
// onto a fresh request, simulating the browser's next request.
func requestWithCookies(rec *httptest.ResponseRecorder, method, target string) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func TestSessionLifecycle(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	rec := httptest.NewRecorder()
	userID := uuid.New()
	id, err := store.Create(ctx, rec, &Data{
		UserID:    userID,
		Username:  "session-test",
		Email:     "session@test.local",
		TwoFADone: true,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(id) != idLength*2 {
		t.Errorf("session id length: got %d, want %d", len(id), idLength*2)
	}

	// The cookie carries the session ID.
	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == CookieName {
			cookie = c
		}
	}
	if cookie == nil || cookie.Value != id {
		t.Fatal("expected a session cookie holding the session id")
	}
	if !cookie.HttpOnly {
		t.Error("session cookie must be HttpOnly")
	}

	// Get returns the stored payload.
	req := requestWithCookies(rec, http.MethodGet, "/")
	data, err := store.Get(ctx, req)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if data == nil || data.UserID != userID || data.Username != "session-test" {
		t.Fatalf("unexpected payload: %+v", data)
	}

	// Update rewrites the payload under the same ID.
	data.TwoFADone = false
	if err := store.Update(ctx, req, data); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, _ := store.Get(ctx, req)
	if got == nil || got.TwoFADone {
		t.Error("update not applied")
	}

	// Destroy removes the session and expires the cookie.
	destroyRec := httptest.NewRecorder()
	if err := store.Destroy(ctx, destroyRec, req); err != nil {
		t.Fatalf("Destroy: %v", err)
	}
	if data, _ := store.Get(ctx, req); data != nil {
		t.Error("session survived Destroy")
	}
}

func TestSessionGetWithoutCookie(t *testing.T) {
	store := testStore(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	data, err := store.Get(context.Background(), req)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if data != nil {
		t.Error("expected nil session for a cookieless request")
	}
}

func TestSessionGetUnknownID(t *testing.T) {
	store := testStore(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "deadbeef"})
	data, err := store.Get(context.Background(), req)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if data != nil {
		t.Error("expected nil session for an unknown session id")
	}
}
