// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "testing"

func TestPostStatusValid(t *testing.T) {
	if !PostStatusDraft.Valid() || !PostStatusPublished.Valid() {
		t.Error("draft and published are the two valid statuses")
	}
	for _, s := range []PostStatus{"", "archived", "Published", "DRAFT"} {
		if s.Valid() {
			t.Errorf("%q should not be a valid status", s)
		}
	}
}

func TestPostIsPublished(t *testing.T) {
	p := Post{Status: PostStatusPublished}
	if !p.IsPublished() {
		t.Error("published post should report IsPublished")
	}
	p.Status = PostStatusDraft
	if p.IsPublished() {
		t.Error("draft should not report IsPublished")
	}
}
