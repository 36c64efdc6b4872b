// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Tag is a free-form label attached to posts. Tags are created implicitly
// the first time a post is saved with an unseen tag name and are never
// deleted when the posts referencing them go away.
type Tag struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`

	// PostCount is the number of published posts carrying this tag.
	// Populated by TagStore.ListWithCounts for the filter sidebar.
	PostCount int `json:"post_count"`
}
