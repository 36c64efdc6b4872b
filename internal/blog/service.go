// Package blog implements the application core of Inkwell: who may see
// which posts, how listings are filtered and paginated, and the validated
// create/update/delete workflows. Handlers stay thin; every rule about
// visibility, ownership, and field validity lives here.
package blog

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"inkwell/internal/models"
	"inkwell/internal/slug"
	"inkwell/internal/store"
)

// Field length limits matching the schema columns.
const (
	maxTitleLen    = 255
	maxSlugLen     = 255
	maxUsernameLen = 150
	maxEmailLen    = 254
	minPasswordLen = 8
)

// validate performs format checks (email) for registration input.
var validate = validator.New()

// Service implements the blog's visibility, access-control, mutation,
// and onboarding contracts over the data stores.
type Service struct {
	posts      *store.PostStore
	categories *store.CategoryStore
	tags       *store.TagStore
	users      *store.UserStore
}

// NewService creates a Service over the given stores.
func NewService(posts *store.PostStore, categories *store.CategoryStore, tags *store.TagStore, users *store.UserStore) *Service {
	return &Service{posts: posts, categories: categories, tags: tags, users: users}
}

// --- Visibility & query composition ---

// ListPosts returns one page of the published posts matching the filters,
// newest first. Listings never include drafts, whoever the viewer is;
// draft visibility exists only on single-post lookup. Empty filters yield
// the whole published set; unmatched filter values yield an empty page,
// never an error.
func (s *Service) ListPosts(f store.Filters, pageNum int) (*Page, error) {
	page := newPage(pageNum)
	posts, total, err := s.posts.ListPublished(f, PageSize, page.offset())
	if err != nil {
		return nil, err
	}
	page.finish(posts, total)
	return page, nil
}

// Facets returns every category and every tag with its published-post
// count (zero included), both sorted by name. These drive the filter
// sidebar.
func (s *Service) Facets() ([]models.Category, []models.Tag, error) {
	categories, err := s.categories.ListWithCounts()
	if err != nil {
		return nil, nil, err
	}
	tags, err := s.tags.ListWithCounts()
	if err != nil {
		return nil, nil, err
	}
	return categories, tags, nil
}

// Categories returns every category sorted by name, for the post editor's
// category select.
func (s *Service) Categories() ([]models.Category, error) {
	return s.categories.ListWithCounts()
}

// GetPost looks a post up by exact slug. Published posts are returned to
// anyone. Drafts are returned only to authenticated viewers; to anonymous
// viewers a draft answers ErrNotFound, deliberately indistinguishable
// from a missing post.
func (s *Service) GetPost(v Viewer, postSlug string) (*models.Post, error) {
	post, err := s.posts.FindBySlug(postSlug)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrNotFound
	}
	if !post.IsPublished() && !v.Authenticated {
		return nil, ErrNotFound
	}
	return post, nil
}

// CategoryPage resolves a category by slug — a hard lookup, unlike the
// soft category filter on the home listing — and returns it with one page
// of its published posts.
func (s *Service) CategoryPage(categorySlug string, pageNum int) (*models.Category, *Page, error) {
	category, err := s.categories.FindBySlug(categorySlug)
	if err != nil {
		return nil, nil, err
	}
	if category == nil {
		return nil, nil, ErrNotFound
	}
	page, err := s.ListPosts(store.Filters{CategorySlug: categorySlug}, pageNum)
	if err != nil {
		return nil, nil, err
	}
	return category, page, nil
}

// TagPage resolves a tag by slug (hard lookup) and returns it with one
// page of its published posts.
func (s *Service) TagPage(tagSlug string, pageNum int) (*models.Tag, *Page, error) {
	tag, err := s.tags.FindBySlug(tagSlug)
	if err != nil {
		return nil, nil, err
	}
	if tag == nil {
		return nil, nil, ErrNotFound
	}
	page, err := s.ListPosts(store.Filters{TagSlug: tagSlug}, pageNum)
	if err != nil {
		return nil, nil, err
	}
	return tag, page, nil
}

// Dashboard returns all of the viewer's own posts, drafts included,
// ordered by most recently updated.
func (s *Service) Dashboard(v Viewer) ([]models.Post, error) {
	if !v.Authenticated {
		return nil, ErrUnauthenticated
	}
	return s.posts.ListByAuthor(v.ID)
}

// --- Mutation workflows ---

// PostInput carries the fields of the post form. Tags is a comma-separated
// list of tag names; CategoryID is the raw form value of the category select.
type PostInput struct {
	Title         string
	Slug          string
	Excerpt       string
	Content       string
	Status        models.PostStatus
	CategoryID    string
	Tags          string
	FeaturedImage string
}

// CreatePost validates the input and persists a new post authored by the
// viewer. The slug is taken from the input when supplied, otherwise
// derived from the title; either way it must be unique — a collision is a
// validation failure, never silently suffixed.
func (s *Service) CreatePost(v Viewer, in PostInput) (*models.Post, error) {
	if !CanCreate(v) {
		return nil, ErrUnauthenticated
	}

	post, err := s.buildPost(in, uuid.Nil)
	if err != nil {
		return nil, err
	}
	post.AuthorID = v.ID

	created, err := s.posts.Create(post, splitTags(in.Tags))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, invalid("slug", "This slug is already in use.")
		}
		return nil, err
	}
	return created, nil
}

// UpdatePost validates the input and applies it to the post with the given
// slug. Only the author may update; the slug-uniqueness check excludes the
// post's own record so it may keep its slug. Authorship and created_at are
// immutable.
func (s *Service) UpdatePost(v Viewer, postSlug string, in PostInput) (*models.Post, error) {
	existing, err := s.posts.FindBySlug(postSlug)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrNotFound
	}
	if !CanMutate(v, existing) {
		if !v.Authenticated {
			return nil, ErrUnauthenticated
		}
		return nil, ErrForbidden
	}

	post, err := s.buildPost(in, existing.ID)
	if err != nil {
		return nil, err
	}
	post.ID = existing.ID
	post.AuthorID = existing.AuthorID
	post.CreatedAt = existing.CreatedAt

	if err := s.posts.Update(post, splitTags(in.Tags)); err != nil {
		if isUniqueViolation(err) {
			return nil, invalid("slug", "This slug is already in use.")
		}
		return nil, err
	}
	return post, nil
}

// DeletePost removes the post with the given slug and its tag links.
// The category and the tags themselves survive. Only the author may delete.
func (s *Service) DeletePost(v Viewer, postSlug string) error {
	post, err := s.posts.FindBySlug(postSlug)
	if err != nil {
		return err
	}
	if post == nil {
		return ErrNotFound
	}
	if !CanMutate(v, post) {
		if !v.Authenticated {
			return ErrUnauthenticated
		}
		return ErrForbidden
	}
	return s.posts.Delete(post.ID)
}

// buildPost validates PostInput and assembles the post to persist.
// exclude is the post's own ID on update (uuid.Nil on create) so a post
// may keep its current slug.
func (s *Service) buildPost(in PostInput, exclude uuid.UUID) (*models.Post, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, invalid("title", "Title is required.")
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return nil, invalid("title", fmt.Sprintf("Title is too long (max %d characters).", maxTitleLen))
	}

	if strings.TrimSpace(in.Content) == "" {
		return nil, invalid("content", "Content is required.")
	}

	status := in.Status
	if status == "" {
		status = models.PostStatusDraft
	}
	if !status.Valid() {
		return nil, invalid("status", "Status must be draft or published.")
	}

	categoryID, err := uuid.Parse(in.CategoryID)
	if err != nil {
		return nil, invalid("category", "Choose a category.")
	}
	category, err := s.categories.FindByID(categoryID)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, invalid("category", "The selected category does not exist.")
	}

	// Slug: normalize the supplied value, or derive one from the title.
	postSlug := slug.Generate(in.Slug)
	if postSlug == "" {
		postSlug = slug.Generate(title)
	}
	postSlug = slug.Truncate(postSlug, maxSlugLen)
	if postSlug == "" {
		return nil, invalid("slug", "Enter a valid slug.")
	}
	taken, err := s.posts.SlugExists(postSlug, exclude)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, invalid("slug", "This slug is already in use.")
	}

	post := &models.Post{
		Title:      title,
		Slug:       postSlug,
		Content:    in.Content,
		Status:     status,
		CategoryID: categoryID,
	}
	if excerpt := strings.TrimSpace(in.Excerpt); excerpt != "" {
		post.Excerpt = &excerpt
	}
	if img := strings.TrimSpace(in.FeaturedImage); img != "" {
		post.FeaturedImage = &img
	}
	return post, nil
}

// splitTags parses the comma-separated tag field into trimmed names.
func splitTags(raw string) []string {
	var names []string
	for _, part := range strings.Split(raw, ",") {
		if name := strings.TrimSpace(part); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// --- Account onboarding ---

// RegisterInput carries the signup form fields.
type RegisterInput struct {
	Username        string
	Email           string
	Password        string
	PasswordConfirm string
}

// Register validates the signup input and creates the account with the
// email lowercased. Email uniqueness is checked case-insensitively here
// for a friendly form error; the unique index on lower(email) remains the
// authoritative guard, and its violation surfaces as the same error when
// two registrations race. The caller establishes the session (auto-login).
func (s *Service) Register(in RegisterInput) (*models.User, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" {
		return nil, invalid("username", "Username is required.")
	}
	if utf8.RuneCountInString(username) > maxUsernameLen {
		return nil, invalid("username", fmt.Sprintf("Username is too long (max %d characters).", maxUsernameLen))
	}

	email := strings.TrimSpace(in.Email)
	if email == "" {
		return nil, invalid("email", "Email is required.")
	}
	if utf8.RuneCountInString(email) > maxEmailLen || validate.Var(email, "email") != nil {
		return nil, invalid("email", "Enter a valid email address.")
	}

	if len(in.Password) < minPasswordLen {
		return nil, invalid("password", fmt.Sprintf("Password must be at least %d characters.", minPasswordLen))
	}
	if in.Password != in.PasswordConfirm {
		return nil, invalid("password", "The two password fields do not match.")
	}

	if existing, err := s.users.FindByUsername(username); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, invalid("username", "This username is already taken.")
	}

	taken, err := s.users.EmailExists(email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, invalid("email", "This email address is already in use.")
	}

	user, err := s.users.Create(username, email, in.Password)
	if err != nil {
		if isUniqueViolation(err) {
			// Lost the read-then-write race; the index caught it.
			return nil, invalid("email", "This email address is already in use.")
		}
		return nil, err
	}
	return user, nil
}

// isUniqueViolation reports whether err is a Postgres unique-constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
