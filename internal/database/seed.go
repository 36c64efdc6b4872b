package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

// Seed populates the database with initial development data: a default
// author account and a starter set of categories. Categories are managed
// through the back office in production, so the public app needs at least
// a few to exist before posts can be created.
func Seed(db *sql.DB) error {
	// Check if any users exist already.
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("writer"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO users (username, email, password_hash)
		VALUES ($1, $2, $3)
	`, "writer", "writer@inkwell.local", string(hash))
	if err != nil {
		return fmt.Errorf("seed insert user: %w", err)
	}

	categories := []struct {
		name, slug string
	}{
		{"General", "general"},
		{"Technology", "technology"},
		{"Travel", "travel"},
		{"Food", "food"},
	}
	for _, c := range categories {
		_, err := db.Exec(`
			INSERT INTO categories (name, slug)
			VALUES ($1, $2)
			ON CONFLICT (slug) DO NOTHING
		`, c.name, c.slug)
		if err != nil {
			return fmt.Errorf("seed insert category %q: %w", c.slug, err)
		}
	}

	slog.Info("database seeded with default author and categories",
		"username", "writer",
		"password", "writer",
	)

	return nil
}
