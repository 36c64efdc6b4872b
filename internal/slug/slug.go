// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug provides URL-friendly slug generation from arbitrary strings.
package slug

import (
	"regexp"
	"strings"
)

var (
	// nonSlug matches anything that isn't a lowercase letter, digit,
	// space, hyphen, or underscore.
	nonSlug = regexp.MustCompile(`[^a-z0-9\s_-]`)
	// separators matches runs of whitespace, underscores, and hyphens.
	separators = regexp.MustCompile(`[\s_-]+`)
)

// Generate creates a URL-friendly slug from the given string.
// Example: "Hello, World! 2026" → "hello-world-2026"
//
// Supplied slugs are passed through Generate as well, so "My Slug" and
// "my-slug" normalize to the same value. Strings with no slug-safe
// characters produce an empty result; callers treat that as invalid.
func Generate(s string) string {
	result := strings.ToLower(strings.TrimSpace(s))
	result = nonSlug.ReplaceAllString(result, "")
	result = separators.ReplaceAllString(result, "-")
	return strings.Trim(result, "-")
}

// Truncate shortens a slug to at most max bytes without leaving a
// trailing hyphen. Slug columns are length-limited in the schema.
func Truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return strings.TrimRight(s[:max], "-")
}
