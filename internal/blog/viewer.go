package blog

import (
	"github.com/google/uuid"

	"inkwell/internal/models"
)

// Viewer identifies who is making a request: an authenticated member or
// an anonymous visitor. It is derived from the session by the handlers
// and passed down to every service operation that depends on identity.
type Viewer struct {
	ID            uuid.UUID
	Username      string
	Authenticated bool
}

// Anonymous returns the viewer for unauthenticated traffic.
func Anonymous() Viewer {
	return Viewer{}
}

// CanCreate reports whether the viewer may create posts. Any authenticated
// member may; authorship is attributed to them on creation.
func CanCreate(v Viewer) bool {
	return v.Authenticated
}

// CanMutate reports whether the viewer may edit or delete the post.
// Only the exact author qualifies; there is no role tiering beyond
// "owns it or not".
func CanMutate(v Viewer, p *models.Post) bool {
	return v.Authenticated && v.ID == p.AuthorID
}
