package store

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/jobnexus/apiserver/types"
)

// BlogRepository handles persistence for posts, categories, tags, and
// comments.
type BlogRepository struct {
	db *sql.DB
}

func NewBlogRepository(db *sql.DB) *BlogRepository {
	return &BlogRepository{db: db}
}

const postColumns = `p.id, p.title, p.slug, p.content, p.excerpt, p.status, p.category_id,
		p.author_id, p.published_at, p.created_at, p.updated_at`

func scanPost(row interface{ Scan(...any) error }) (types.BlogPost, error) {
	var post types.BlogPost
	err := row.Scan(
		&post.ID,
		&post.Title,
		&post.Slug,
		&post.Content,
		&post.Excerpt,
		&post.Status,
		&post.CategoryID,
		&post.AuthorID,
		&post.PublishedAt,
		&post.CreatedAt,
		&post.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.BlogPost{}, ErrNotFound
		}
		return types.BlogPost{}, err
	}
	return post, nil
}

func (r *BlogRepository) GetPost(ctx context.Context, id int) (types.BlogPost, error) {
	const query = `SELECT ` + postColumns + ` FROM blog_posts p WHERE p.id = $1`
	post, err := scanPost(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return types.BlogPost{}, err
	}
	return r.attachTags(ctx, post)
}

func (r *BlogRepository) GetPostBySlug(ctx context.Context, slug string) (types.BlogPost, error) {
	const query = `SELECT ` + postColumns + ` FROM blog_posts p WHERE p.slug = $1`
	post, err := scanPost(r.db.QueryRowContext(ctx, query, slug))
	if err != nil {
		return types.BlogPost{}, err
	}
	return r.attachTags(ctx, post)
}

func (r *BlogRepository) CreatePost(ctx context.Context, post types.BlogPost) (types.BlogPost, error) {
	now := time.Now()
	post.CreatedAt = now
	post.UpdatedAt = now

	const query = `
		INSERT INTO blog_posts (title, slug, content, excerpt, status, category_id, author_id, published_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		post.Title,
		post.Slug,
		post.Content,
		post.Excerpt,
		post.Status,
		post.CategoryID,
		post.AuthorID,
		post.PublishedAt,
		post.CreatedAt,
		post.UpdatedAt,
	).Scan(&post.ID); err != nil {
		return types.BlogPost{}, mapError(err)
	}
	if err := r.SetPostTags(ctx, post.ID, tagIDs(post.Tags)); err != nil {
		return types.BlogPost{}, err
	}
	return post, nil
}

func (r *BlogRepository) UpdatePost(ctx context.Context, post types.BlogPost) (types.BlogPost, error) {
	post.UpdatedAt = time.Now()

	const query = `
		UPDATE blog_posts
		SET title = $1,
			slug = $2,
			content = $3,
			excerpt = $4,
			status = $5,
			category_id = $6,
			published_at = $7,
			updated_at = $8
		WHERE id = $9`
	result, err := r.db.ExecContext(
		ctx,
		query,
		post.Title,
		post.Slug,
		post.Content,
		post.Excerpt,
		post.Status,
		post.CategoryID,
		post.PublishedAt,
		post.UpdatedAt,
		post.ID,
	)
	if err != nil {
		return types.BlogPost{}, mapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.BlogPost{}, err
	}
	if affected == 0 {
		return types.BlogPost{}, ErrNotFound
	}
	if err := r.SetPostTags(ctx, post.ID, tagIDs(post.Tags)); err != nil {
		return types.BlogPost{}, err
	}
	return post, nil
}

// UpdatePostStatus mutates only the editorial state and publish time.
func (r *BlogRepository) UpdatePostStatus(ctx context.Context, id int, status types.PostStatus, publishedAt *time.Time) error {
	const query = `
		UPDATE blog_posts
		SET status = $1, published_at = $2, updated_at = $3
		WHERE id = $4`
	result, err := r.db.ExecContext(ctx, query, status, publishedAt, time.Now(), id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *BlogRepository) DeletePost(ctx context.Context, id int) error {
	const query = `DELETE FROM blog_posts WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// PostFilter narrows ListPosts results. Zero values mean no filtering.
type PostFilter struct {
	Status       types.PostStatus
	CategorySlug string
	TagSlug      string

	// Search matches title, excerpt, and content case-insensitively.
	Search string

	// VisibleAt, when set, keeps only posts whose published_at is unset or
	// has passed, implementing the public visibility invariant. Combine
	// with Status = published for public listings.
	VisibleAt *time.Time

	Offset int
	Limit  int
}

func (r *BlogRepository) ListPosts(ctx context.Context, filter PostFilter) ([]types.BlogPost, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where += ` AND p.status = $` + strconv.Itoa(len(args))
	}
	if filter.VisibleAt != nil {
		args = append(args, *filter.VisibleAt)
		where += ` AND (p.published_at IS NULL OR p.published_at <= $` + strconv.Itoa(len(args)) + `)`
	}
	if filter.CategorySlug != "" {
		args = append(args, filter.CategorySlug)
		where += ` AND p.category_id IN (SELECT id FROM blog_categories WHERE slug = $` + strconv.Itoa(len(args)) + `)`
	}
	if filter.TagSlug != "" {
		args = append(args, filter.TagSlug)
		where += ` AND p.id IN (
			SELECT pt.post_id FROM blog_post_tags pt
			JOIN blog_tags t ON t.id = pt.tag_id
			WHERE t.slug = $` + strconv.Itoa(len(args)) + `)`
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := strconv.Itoa(len(args))
		where += ` AND (p.title ILIKE $` + n + ` OR p.excerpt ILIKE $` + n + ` OR p.content ILIKE $` + n + `)`
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM blog_posts p`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + postColumns + ` FROM blog_posts p` + where +
		` ORDER BY p.published_at DESC NULLS LAST, p.id DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += ` LIMIT $` + strconv.Itoa(len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += ` OFFSET $` + strconv.Itoa(len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	posts := make([]types.BlogPost, 0, filter.Limit)
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, 0, err
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	for i := range posts {
		posts[i], err = r.attachTags(ctx, posts[i])
		if err != nil {
			return nil, 0, err
		}
	}
	return posts, total, nil
}

func (r *BlogRepository) attachTags(ctx context.Context, post types.BlogPost) (types.BlogPost, error) {
	const query = `
		SELECT t.id, t.name, t.slug
		FROM blog_tags t
		JOIN blog_post_tags pt ON pt.tag_id = t.id
		WHERE pt.post_id = $1
		ORDER BY t.name`
	rows, err := r.db.QueryContext(ctx, query, post.ID)
	if err != nil {
		return types.BlogPost{}, err
	}
	defer rows.Close()

	post.Tags = make([]types.Tag, 0)
	for rows.Next() {
		var tag types.Tag
		if err := rows.Scan(&tag.ID, &tag.Name, &tag.Slug); err != nil {
			return types.BlogPost{}, err
		}
		post.Tags = append(post.Tags, tag)
	}
	return post, rows.Err()
}

// SetPostTags replaces the post's tag set.
func (r *BlogRepository) SetPostTags(ctx context.Context, postID int, tagIDs []int) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM blog_post_tags WHERE post_id = $1`, postID); err != nil {
		return err
	}
	for _, tagID := range tagIDs {
		if _, err := r.db.ExecContext(ctx,
			`INSERT INTO blog_post_tags (post_id, tag_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			postID, tagID); err != nil {
			return err
		}
	}
	return nil
}

func tagIDs(tags []types.Tag) []int {
	ids := make([]int, 0, len(tags))
	for _, t := range tags {
		ids = append(ids, t.ID)
	}
	return ids
}

func (r *BlogRepository) ListCategories(ctx context.Context) ([]types.Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, slug FROM blog_categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := make([]types.Category, 0)
	for rows.Next() {
		var c types.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *BlogRepository) CreateCategory(ctx context.Context, c types.Category) (types.Category, error) {
	const query = `INSERT INTO blog_categories (name, slug) VALUES ($1, $2) RETURNING id`
	if err := r.db.QueryRowContext(ctx, query, c.Name, c.Slug).Scan(&c.ID); err != nil {
		return types.Category{}, mapError(err)
	}
	return c, nil
}

func (r *BlogRepository) DeleteCategory(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM blog_categories WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *BlogRepository) ListTags(ctx context.Context) ([]types.Tag, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, slug FROM blog_tags ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tags := make([]types.Tag, 0)
	for rows.Next() {
		var t types.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Slug); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

func (r *BlogRepository) CreateTag(ctx context.Context, t types.Tag) (types.Tag, error) {
	const query = `INSERT INTO blog_tags (name, slug) VALUES ($1, $2) RETURNING id`
	if err := r.db.QueryRowContext(ctx, query, t.Name, t.Slug).Scan(&t.ID); err != nil {
		return types.Tag{}, mapError(err)
	}
	return t, nil
}

func (r *BlogRepository) GetTagsBySlugs(ctx context.Context, slugs []string) ([]types.Tag, error) {
	tags := make([]types.Tag, 0, len(slugs))
	for _, s := range slugs {
		var t types.Tag
		err := r.db.QueryRowContext(ctx, `SELECT id, name, slug FROM blog_tags WHERE slug = $1`, s).
			Scan(&t.ID, &t.Name, &t.Slug)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, ErrNotFound
			}
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, nil
}

func (r *BlogRepository) DeleteTag(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM blog_tags WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *BlogRepository) CreateComment(ctx context.Context, c types.Comment) (types.Comment, error) {
	c.CreatedAt = time.Now()
	const query = `
		INSERT INTO blog_comments (post_id, author_name, author_email, body, approved, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	if err := r.db.QueryRowContext(ctx, query,
		c.PostID, c.AuthorName, c.AuthorEmail, c.Body, c.Approved, c.CreatedAt).Scan(&c.ID); err != nil {
		return types.Comment{}, err
	}
	return c, nil
}

// ListComments returns comments for a post, optionally only approved ones.
func (r *BlogRepository) ListComments(ctx context.Context, postID int, approvedOnly bool) ([]types.Comment, error) {
	query := `
		SELECT id, post_id, author_name, author_email, body, approved, created_at
		FROM blog_comments
		WHERE post_id = $1`
	if approvedOnly {
		query += ` AND approved`
	}
	query += ` ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := make([]types.Comment, 0)
	for rows.Next() {
		var c types.Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.AuthorName, &c.AuthorEmail, &c.Body, &c.Approved, &c.CreatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

func (r *BlogRepository) ApproveComment(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `UPDATE blog_comments SET approved = TRUE WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *BlogRepository) DeleteComment(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM blog_comments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
