// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// store_test.go provides a shared test database helper for all store
// integration tests. Tests are skipped if PostgreSQL is not available.
package store

import (
	"database/sql"
	"os"
	"testing"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"inkwell/internal/database"
	"inkwell/internal/models"
)

// testDSN returns the PostgreSQL connection string for testing.
// Uses environment variables with the development defaults.
func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "inkwell")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "inkwell")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test database and runs migrations.
// If the database is unavailable, the test is skipped. A cleanup
// function is registered to close the connection when the test finishes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("pgx", testDSN())
	if err != nil {
		t.Skipf("skipping integration test: cannot open DB: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// cleanUsers removes test users by username. Call in t.Cleanup().
func cleanUsers(t *testing.T, db *sql.DB, usernames ...string) {
	t.Helper()
	for _, name := range usernames {
		db.Exec("DELETE FROM users WHERE username = $1", name)
	}
}

// cleanPosts removes test posts by slug. Call in t.Cleanup().
func cleanPosts(t *testing.T, db *sql.DB, slugs ...string) {
	t.Helper()
	for _, s := range slugs {
		db.Exec("DELETE FROM posts WHERE slug = $1", s)
	}
}

// cleanCategories removes test categories by slug. Call in t.Cleanup().
func cleanCategories(t *testing.T, db *sql.DB, slugs ...string) {
	t.Helper()
	for _, s := range slugs {
		db.Exec("DELETE FROM categories WHERE slug = $1", s)
	}
}

// cleanTags removes test tags by slug. Call in t.Cleanup().
func cleanTags(t *testing.T, db *sql.DB, slugs ...string) {
	t.Helper()
	for _, s := range slugs {
		db.Exec("DELETE FROM tags WHERE slug = $1", s)
	}
}

// fixtureUser creates a user for post fixtures and registers cleanup.
func fixtureUser(t *testing.T, db *sql.DB, username string) *models.User {
	t.Helper()
	s := NewUserStore(db)
	user, err := s.Create(username, username+"@store-test.local", "testpass123")
	if err != nil {
		t.Fatalf("fixture user %s: %v", username, err)
	}
	t.Cleanup(func() { cleanUsers(t, db, username) })
	return user
}

// fixtureCategory creates a category for post fixtures and registers cleanup.
func fixtureCategory(t *testing.T, db *sql.DB, name, slug string) *models.Category {
	t.Helper()
	s := NewCategoryStore(db)
	cat, err := s.Create(name, slug)
	if err != nil {
		t.Fatalf("fixture category %s: %v", slug, err)
	}
	t.Cleanup(func() { cleanCategories(t, db, slug) })
	return cat
}

// fixturePost creates a post and registers cleanup.
func fixturePost(t *testing.T, db *sql.DB, p *models.Post, tags ...string) *models.Post {
	t.Helper()
	s := NewPostStore(db)
	created, err := s.Create(p, tags)
	if err != nil {
		t.Fatalf("fixture post %s: %v", p.Slug, err)
	}
	t.Cleanup(func() {
		cleanPosts(t, db, p.Slug)
		for _, tag := range created.Tags {
			cleanTags(t, db, tag.Slug)
		}
	})
	return created
}

// mustUUID fails the test if the ID is the zero UUID.
func mustUUID(t *testing.T, id uuid.UUID) {
	t.Helper()
	if id == uuid.Nil {
		t.Fatal("expected a non-nil UUID")
	}
}
