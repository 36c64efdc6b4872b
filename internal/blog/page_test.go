// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package blog

import "testing"

func TestNewPageClampsNumber(t *testing.T) {
	for _, n := range []int{-5, 0, 1} {
		p := newPage(n)
		if n >= 1 && p.Number != n {
			t.Errorf("newPage(%d).Number = %d, want %d", n, p.Number, n)
		}
		if n < 1 && p.Number != 1 {
			t.Errorf("newPage(%d).Number = %d, want 1", n, p.Number)
		}
	}

	if p := newPage(7); p.offset() != 36 {
		t.Errorf("offset for page 7: got %d, want 36", p.offset())
	}
}

func TestPageTotals(t *testing.T) {
	tests := []struct {
		total     int
		wantPages int
	}{
		{0, 1},
		{1, 1},
		{6, 1},
		{7, 2},
		{12, 2},
		{13, 3},
	}

	for _, tt := range tests {
		p := newPage(1)
		p.finish(nil, tt.total)
		if p.TotalPages != tt.wantPages {
			t.Errorf("total=%d: TotalPages = %d, want %d", tt.total, p.TotalPages, tt.wantPages)
		}
	}
}

func TestPageNavigation(t *testing.T) {
	p := newPage(2)
	p.finish(nil, 15) // 3 pages

	if !p.HasPrev() || !p.HasNext() {
		t.Error("middle page should have prev and next")
	}
	if p.PrevNumber() != 1 || p.NextNumber() != 3 {
		t.Errorf("prev/next: got %d/%d, want 1/3", p.PrevNumber(), p.NextNumber())
	}

	first := newPage(1)
	first.finish(nil, 15)
	if first.HasPrev() {
		t.Error("first page should not have prev")
	}

	last := newPage(3)
	last.finish(nil, 15)
	if last.HasNext() {
		t.Error("last page should not have next")
	}

	// A page past the end reports no next.
	past := newPage(9)
	past.finish(nil, 15)
	if past.HasNext() {
		t.Error("page past the end should not have next")
	}
}
