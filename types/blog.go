package types

import "time"

// PostStatus is the editorial state of a blog post.
type PostStatus string

const (
	// PostDraft posts are visible only to blog managers.
	PostDraft PostStatus = "draft"

	// PostPendingReview posts await a super-admin decision. Publishing out
	// of review is restricted to the super-admin.
	PostPendingReview PostStatus = "pending_review"

	// PostPublished posts appear in public listings once PublishedAt has
	// passed (or is unset).
	PostPublished PostStatus = "published"
)

// BlogPost is an article in the content directory.
type BlogPost struct {
	// ID is the unique identifier of the post.
	ID int `json:"id" db:"id"`

	// Title is the headline of the post.
	Title string `json:"title" db:"title"`

	// Slug is the unique URL-safe identifier derived from the title.
	Slug string `json:"slug" db:"slug"`

	// Content is the full article body.
	Content string `json:"content" db:"content"`

	// Excerpt is a short summary shown in listings and feeds.
	Excerpt string `json:"excerpt" db:"excerpt"`

	// Status is the editorial state of the post.
	Status PostStatus `json:"status" db:"status"`

	// CategoryID references the post's category, if any.
	CategoryID *int `json:"category_id,omitempty" db:"category_id"`

	// Tags are the tags attached to the post, joined in by the store.
	Tags []Tag `json:"tags" db:"-"`

	// AuthorID is the account that created the post.
	AuthorID int `json:"author_id" db:"author_id"`

	// PublishedAt gates public visibility: a published post with a future
	// PublishedAt is excluded from public listings until that time passes.
	// Nil means visible immediately on publish.
	PublishedAt *time.Time `json:"published_at,omitempty" db:"published_at"`

	// CreatedAt is the timestamp at which the post was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the post.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Category groups blog posts. Slugs are unique.
type Category struct {
	ID   int    `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
	Slug string `json:"slug" db:"slug"`
}

// Tag labels blog posts. Slugs are unique.
type Tag struct {
	ID   int    `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
	Slug string `json:"slug" db:"slug"`
}

// Comment is a reader comment on a blog post. Comments land unapproved
// and become publicly visible only after moderation.
type Comment struct {
	ID          int       `json:"id" db:"id"`
	PostID      int       `json:"post_id" db:"post_id"`
	AuthorName  string    `json:"author_name" db:"author_name"`
	AuthorEmail string    `json:"author_email" db:"author_email"`
	Body        string    `json:"body" db:"body"`
	Approved    bool      `json:"approved" db:"approved"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
