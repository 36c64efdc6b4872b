// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"inkwell/internal/models"
	"inkwell/internal/slug"
)

// Filters narrows a published-post listing. Zero values mean "no filter";
// when several are set they compose conjunctively.
type Filters struct {
	Query        string // case-insensitive substring over title/content/category name/tag names
	CategorySlug string // exact category slug
	TagSlug      string // exact tag slug
}

// postColumns are the post fields selected on every read, joined with the
// author's username and the category's name and slug.
const postColumns = `
	p.id, p.title, p.slug, p.excerpt, p.content, p.featured_image,
	p.status, p.author_id, p.category_id, p.created_at, p.updated_at,
	u.username, c.name, c.slug`

const postJoins = `
	FROM posts p
	JOIN users u ON u.id = p.author_id
	JOIN categories c ON c.id = p.category_id`

// PostStore handles all post-related database operations, including the
// post↔tag join table.
type PostStore struct {
	db *sql.DB
}

// NewPostStore creates a new PostStore with the given database connection.
func NewPostStore(db *sql.DB) *PostStore {
	return &PostStore{db: db}
}

func scanPost(scanner interface{ Scan(...any) error }) (*models.Post, error) {
	p := &models.Post{}
	err := scanner.Scan(
		&p.ID, &p.Title, &p.Slug, &p.Excerpt, &p.Content, &p.FeaturedImage,
		&p.Status, &p.AuthorID, &p.CategoryID, &p.CreatedAt, &p.UpdatedAt,
		&p.AuthorName, &p.CategoryName, &p.CategorySlug,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// likePattern wraps a search term for ILIKE substring matching, escaping
// the wildcard characters so user input matches literally.
func likePattern(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(term) + "%"
}

// publishedWhere builds the WHERE clause and argument list for a filtered
// published-post listing. The free-text term matches any of title, content,
// category name, or tag name (OR); the category and tag filters then narrow
// the set (AND). Tag matching goes through EXISTS subqueries so a post
// carrying several matching tags still appears exactly once.
func publishedWhere(f Filters) (string, []any) {
	var (
		conds = []string{"p.status = 'published'"}
		args  []any
	)

	if f.Query != "" {
		args = append(args, likePattern(f.Query))
		n := len(args)
		conds = append(conds, fmt.Sprintf(`(
			p.title ILIKE $%d OR p.content ILIKE $%d OR c.name ILIKE $%d
			OR EXISTS (
				SELECT 1 FROM post_tags pt
				JOIN tags t ON t.id = pt.tag_id
				WHERE pt.post_id = p.id AND t.name ILIKE $%d
			))`, n, n, n, n))
	}

	if f.CategorySlug != "" {
		args = append(args, f.CategorySlug)
		conds = append(conds, fmt.Sprintf("c.slug = $%d", len(args)))
	}

	if f.TagSlug != "" {
		args = append(args, f.TagSlug)
		conds = append(conds, fmt.Sprintf(`EXISTS (
			SELECT 1 FROM post_tags pt2
			JOIN tags t2 ON t2.id = pt2.tag_id
			WHERE pt2.post_id = p.id AND t2.slug = $%d
		)`, len(args)))
	}

	return "WHERE " + strings.Join(conds, " AND "), args
}

// ListPublished returns one page of published posts matching the filters,
// newest first, along with the total match count for pagination. Tags are
// attached to each returned post.
func (s *PostStore) ListPublished(f Filters, limit, offset int) ([]models.Post, int, error) {
	where, args := publishedWhere(f)

	var total int
	countQuery := `SELECT COUNT(*) ` + postJoins + ` ` + where
	if err := s.db.QueryRow(countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count published posts: %w", err)
	}

	query := `SELECT ` + postColumns + postJoins + ` ` + where +
		fmt.Sprintf(" ORDER BY p.created_at DESC, p.id DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	rows, err := s.db.Query(query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list published posts: %w", err)
	}
	defer rows.Close()

	var posts []models.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	if err := s.attachTags(posts); err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

// ListByAuthor returns all posts by one author, drafts included, ordered
// by most recently updated. Used for the author dashboard.
func (s *PostStore) ListByAuthor(authorID uuid.UUID) ([]models.Post, error) {
	rows, err := s.db.Query(`
		SELECT `+postColumns+postJoins+`
		WHERE p.author_id = $1
		ORDER BY p.updated_at DESC
	`, authorID)
	if err != nil {
		return nil, fmt.Errorf("list posts by author: %w", err)
	}
	defer rows.Close()

	var posts []models.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := s.attachTags(posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// FindBySlug retrieves a post by exact slug match regardless of status,
// with tags attached. Returns nil if not found. Draft visibility policy
// is applied by the caller, not here.
func (s *PostStore) FindBySlug(postSlug string) (*models.Post, error) {
	row := s.db.QueryRow(`SELECT `+postColumns+postJoins+` WHERE p.slug = $1`, postSlug)
	p, err := scanPost(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post by slug: %w", err)
	}

	tags, err := s.tagsForPost(p.ID)
	if err != nil {
		return nil, err
	}
	p.Tags = tags
	return p, nil
}

// SlugExists reports whether any post other than exclude already uses the
// slug. Pass uuid.Nil to check against all posts.
func (s *PostStore) SlugExists(postSlug string, exclude uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.QueryRow(`
		SELECT EXISTS (SELECT 1 FROM posts WHERE slug = $1 AND id <> $2)
	`, postSlug, exclude).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("post slug exists: %w", err)
	}
	return exists, nil
}

// Create inserts a new post and links its tags, creating unseen tags on
// the fly. Everything runs in one transaction so a failed tag link does
// not leave an orphaned post behind.
func (s *PostStore) Create(p *models.Post, tagNames []string) (*models.Post, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	created := &models.Post{}
	err = tx.QueryRow(`
		INSERT INTO posts (title, slug, excerpt, content, featured_image, status, author_id, category_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, title, slug, excerpt, content, featured_image,
		          status, author_id, category_id, created_at, updated_at
	`, p.Title, p.Slug, p.Excerpt, p.Content, p.FeaturedImage, p.Status, p.AuthorID, p.CategoryID).Scan(
		&created.ID, &created.Title, &created.Slug, &created.Excerpt, &created.Content,
		&created.FeaturedImage, &created.Status, &created.AuthorID, &created.CategoryID,
		&created.CreatedAt, &created.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}

	tags, err := linkTags(tx, created.ID, tagNames)
	if err != nil {
		return nil, err
	}
	created.Tags = tags

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit create post: %w", err)
	}
	return created, nil
}

// Update modifies an existing post and replaces its tag set. The author
// column is never touched; created_at keeps its original value and
// updated_at is refreshed.
func (s *PostStore) Update(p *models.Post, tagNames []string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		UPDATE posts SET
			title = $1, slug = $2, excerpt = $3, content = $4,
			featured_image = $5, status = $6, category_id = $7,
			updated_at = NOW()
		WHERE id = $8
	`, p.Title, p.Slug, p.Excerpt, p.Content, p.FeaturedImage, p.Status, p.CategoryID, p.ID)
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM post_tags WHERE post_id = $1`, p.ID); err != nil {
		return fmt.Errorf("clear post tags: %w", err)
	}
	tags, err := linkTags(tx, p.ID, tagNames)
	if err != nil {
		return err
	}
	p.Tags = tags

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit update post: %w", err)
	}
	return nil
}

// Delete removes a post by ID. The post_tags rows go with it via cascade;
// the tags themselves stay.
func (s *PostStore) Delete(id uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}

// linkTags finds or creates each named tag and links it to the post.
// Tag slugs derive from the name; two names normalizing to the same slug
// are treated as the same tag.
func linkTags(tx *sql.Tx, postID uuid.UUID, tagNames []string) ([]models.Tag, error) {
	var tags []models.Tag
	seen := make(map[string]bool)

	for _, name := range tagNames {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		tagSlug := slug.Truncate(slug.Generate(name), 64)
		if tagSlug == "" || seen[tagSlug] {
			continue
		}
		seen[tagSlug] = true

		var t models.Tag
		err := tx.QueryRow(`
			INSERT INTO tags (name, slug)
			VALUES ($1, $2)
			ON CONFLICT (slug) DO UPDATE SET name = tags.name
			RETURNING id, name, slug, created_at
		`, name, tagSlug).Scan(&t.ID, &t.Name, &t.Slug, &t.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("find or create tag %q: %w", name, err)
		}

		_, err = tx.Exec(`
			INSERT INTO post_tags (post_id, tag_id)
			VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, postID, t.ID)
		if err != nil {
			return nil, fmt.Errorf("link tag %q: %w", name, err)
		}
		tags = append(tags, t)
	}
	return tags, nil
}

// tagsForPost returns the tags attached to a single post, by name.
func (s *PostStore) tagsForPost(postID uuid.UUID) ([]models.Tag, error) {
	rows, err := s.db.Query(`
		SELECT t.id, t.name, t.slug, t.created_at
		FROM tags t
		JOIN post_tags pt ON pt.tag_id = t.id
		WHERE pt.post_id = $1
		ORDER BY t.name ASC
	`, postID)
	if err != nil {
		return nil, fmt.Errorf("tags for post: %w", err)
	}
	defer rows.Close()

	var tags []models.Tag
	for rows.Next() {
		var t models.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Slug, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// attachTags batch-loads tags for a slice of posts with a single query.
func (s *PostStore) attachTags(posts []models.Post) error {
	if len(posts) == 0 {
		return nil
	}

	ids := make([]string, len(posts))
	index := make(map[uuid.UUID]int, len(posts))
	for i := range posts {
		ids[i] = posts[i].ID.String()
		index[posts[i].ID] = i
	}

	rows, err := s.db.Query(`
		SELECT pt.post_id, t.id, t.name, t.slug, t.created_at
		FROM tags t
		JOIN post_tags pt ON pt.tag_id = t.id
		WHERE pt.post_id = ANY($1)
		ORDER BY t.name ASC
	`, "{"+strings.Join(ids, ",")+"}")
	if err != nil {
		return fmt.Errorf("attach tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var postID uuid.UUID
		var t models.Tag
		if err := rows.Scan(&postID, &t.ID, &t.Name, &t.Slug, &t.CreatedAt); err != nil {
			return fmt.Errorf("scan post tag: %w", err)
		}
		if i, ok := index[postID]; ok {
			posts[i].Tags = append(posts[i].Tags, t)
		}
	}
	return rows.Err()
}
