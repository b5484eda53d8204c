package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/gosimple/slug"
	"github.com/jobnexus/apiserver/internal/authz"
	"github.com/jobnexus/apiserver/internal/events"
	"github.com/jobnexus/apiserver/internal/store"
	"github.com/jobnexus/apiserver/internal/workflow"
	"github.com/jobnexus/apiserver/types"
)

// BlogRepository defines persistence operations for the content
// directory.
type BlogRepository interface {
	GetPost(ctx context.Context, id int) (types.BlogPost, error)
	GetPostBySlug(ctx context.Context, slug string) (types.BlogPost, error)
	CreatePost(ctx context.Context, post types.BlogPost) (types.BlogPost, error)
	UpdatePost(ctx context.Context, post types.BlogPost) (types.BlogPost, error)
	UpdatePostStatus(ctx context.Context, id int, status types.PostStatus, publishedAt *time.Time) error
	DeletePost(ctx context.Context, id int) error
	ListPosts(ctx context.Context, filter store.PostFilter) ([]types.BlogPost, int, error)
	ListCategories(ctx context.Context) ([]types.Category, error)
	CreateCategory(ctx context.Context, c types.Category) (types.Category, error)
	DeleteCategory(ctx context.Context, id int) error
	ListTags(ctx context.Context) ([]types.Tag, error)
	CreateTag(ctx context.Context, t types.Tag) (types.Tag, error)
	GetTagsBySlugs(ctx context.Context, slugs []string) ([]types.Tag, error)
	DeleteTag(ctx context.Context, id int) error
	CreateComment(ctx context.Context, c types.Comment) (types.Comment, error)
	ListComments(ctx context.Context, postID int, approvedOnly bool) ([]types.Comment, error)
	ApproveComment(ctx context.Context, id int) error
	DeleteComment(ctx context.Context, id int) error
}

// BlogService encapsulates the content directory: posts, categories,
// tags, comments, and the editorial workflow.
type BlogService struct {
	repo    BlogRepository
	emitter events.Emitter

	// now is swapped in tests to pin the publish-visibility clock.
	now func() time.Time
}

func NewBlogService(repo BlogRepository, emitter events.Emitter) *BlogService {
	if emitter == nil {
		emitter = events.Nop{}
	}
	return &BlogService{repo: repo, emitter: emitter, now: time.Now}
}

// CreatePost creates a draft. Requires MANAGE_BLOG. The slug derives
// from the title; a collision surfaces as a duplicate conflict.
func (s *BlogService) CreatePost(ctx context.Context, actor types.User, post types.BlogPost) (types.BlogPost, error) {
	if !authz.HasCapability(actor, authz.ManageBlog) {
		return types.BlogPost{}, ErrDenied
	}
	if post.Title == "" {
		return types.BlogPost{}, ErrValidation
	}
	post.Slug = slug.Make(post.Title)
	post.Status = types.PostDraft
	post.AuthorID = actor.ID
	return s.repo.CreatePost(ctx, post)
}

// UpdatePost edits a post's content fields; the slug follows the title.
// Requires MANAGE_BLOG.
func (s *BlogService) UpdatePost(ctx context.Context, actor types.User, post types.BlogPost) (types.BlogPost, error) {
	if !authz.HasCapability(actor, authz.ManageBlog) {
		return types.BlogPost{}, ErrDenied
	}
	current, err := s.repo.GetPost(ctx, post.ID)
	if err != nil {
		return types.BlogPost{}, err
	}
	if post.Title == "" {
		return types.BlogPost{}, ErrValidation
	}
	post.Slug = slug.Make(post.Title)
	post.Status = current.Status
	post.AuthorID = current.AuthorID
	if post.PublishedAt == nil {
		post.PublishedAt = current.PublishedAt
	}
	return s.repo.UpdatePost(ctx, post)
}

// DeletePost removes a post. Requires MANAGE_BLOG.
func (s *BlogService) DeletePost(ctx context.Context, actor types.User, id int) error {
	if !authz.HasCapability(actor, authz.ManageBlog) {
		return ErrDenied
	}
	return s.repo.DeletePost(ctx, id)
}

// Transition moves a post through the editorial machine. Requires
// MANAGE_BLOG; publishing out of pending_review is additionally
// restricted to the super-admin (maker-checker), while a capability
// holder may still publish a draft directly. An invalid transition is
// rejected with no state change.
func (s *BlogService) Transition(ctx context.Context, actor types.User, id int, next types.PostStatus, publishAt *time.Time) error {
	if !authz.HasCapability(actor, authz.ManageBlog) {
		return ErrDenied
	}
	current, err := s.repo.GetPost(ctx, id)
	if err != nil {
		return err
	}
	if err := workflow.BlogPosts.Step(current.Status, next); err != nil {
		return err
	}
	if current.Status == types.PostPendingReview && next == types.PostPublished &&
		actor.Role != types.RoleSuperAdmin {
		return ErrDenied
	}

	publishedAt := current.PublishedAt
	if next == types.PostPublished {
		if publishAt != nil {
			publishedAt = publishAt
		} else if publishedAt == nil {
			now := s.now()
			publishedAt = &now
		}
	}
	if err := s.repo.UpdatePostStatus(ctx, id, next, publishedAt); err != nil {
		return err
	}
	s.emitter.Emit(ctx, "post.status_changed", map[string]string{
		"post_id": itoa(id),
		"status":  string(next),
		"by":      itoa(actor.ID),
	})
	return nil
}

// GetPost returns a post in any state. Requires MANAGE_BLOG.
func (s *BlogService) GetPost(ctx context.Context, actor types.User, id int) (types.BlogPost, error) {
	if !authz.HasCapability(actor, authz.ManageBlog) {
		return types.BlogPost{}, ErrDenied
	}
	return s.repo.GetPost(ctx, id)
}

// ListPosts returns posts in any state for the editor view. Requires
// MANAGE_BLOG.
func (s *BlogService) ListPosts(ctx context.Context, actor types.User, filter store.PostFilter) ([]types.BlogPost, int, error) {
	if !authz.HasCapability(actor, authz.ManageBlog) {
		return nil, 0, ErrDenied
	}
	return s.repo.ListPosts(ctx, filter)
}

// publicFilter pins a filter to the publish-visibility invariant.
func (s *BlogService) publicFilter(filter store.PostFilter) store.PostFilter {
	now := s.now()
	filter.Status = types.PostPublished
	filter.VisibleAt = &now
	return filter
}

// ListPublic returns publicly visible posts, newest first.
func (s *BlogService) ListPublic(ctx context.Context, filter store.PostFilter) ([]types.BlogPost, int, error) {
	return s.repo.ListPosts(ctx, s.publicFilter(filter))
}

// GetPublicBySlug returns a publicly visible post. Drafts, posts in
// review, and scheduled posts yield NotFound, indistinguishable from a
// missing slug.
func (s *BlogService) GetPublicBySlug(ctx context.Context, postSlug string) (types.BlogPost, error) {
	post, err := s.repo.GetPostBySlug(ctx, postSlug)
	if err != nil {
		return types.BlogPost{}, err
	}
	if !s.visible(post) {
		return types.BlogPost{}, store.ErrNotFound
	}
	return post, nil
}

func (s *BlogService) visible(post types.BlogPost) bool {
	if post.Status != types.PostPublished {
		return false
	}
	return post.PublishedAt == nil || !post.PublishedAt.After(s.now())
}

// Related ranks publicly visible posts by shared category (weighted
// higher) and shared tag count, excluding the post itself, breaking ties
// by most recent publish date.
func (s *BlogService) Related(ctx context.Context, postSlug string, limit int) ([]types.BlogPost, error) {
	post, err := s.GetPublicBySlug(ctx, postSlug)
	if err != nil {
		return nil, err
	}
	candidates, _, err := s.repo.ListPosts(ctx, s.publicFilter(store.PostFilter{}))
	if err != nil {
		return nil, err
	}

	tagSet := make(map[int]bool, len(post.Tags))
	for _, t := range post.Tags {
		tagSet[t.ID] = true
	}

	type scored struct {
		post  types.BlogPost
		score int
	}
	ranked := make([]scored, 0, len(candidates))
	for _, c := range candidates {
		if c.ID == post.ID {
			continue
		}
		score := 0
		if post.CategoryID != nil && c.CategoryID != nil && *post.CategoryID == *c.CategoryID {
			score += relatedCategoryWeight
		}
		for _, t := range c.Tags {
			if tagSet[t.ID] {
				score++
			}
		}
		if score > 0 {
			ranked = append(ranked, scored{post: c, score: score})
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return publishedAfter(ranked[i].post, ranked[j].post)
	})

	if limit <= 0 || limit > len(ranked) {
		limit = len(ranked)
	}
	related := make([]types.BlogPost, 0, limit)
	for _, r := range ranked[:limit] {
		related = append(related, r.post)
	}
	return related, nil
}

// relatedCategoryWeight outranks any realistic shared-tag count alone
// only when combined: one shared category counts as three shared tags.
const relatedCategoryWeight = 3

func publishedAfter(a, b types.BlogPost) bool {
	switch {
	case a.PublishedAt == nil:
		return false
	case b.PublishedAt == nil:
		return true
	default:
		return a.PublishedAt.After(*b.PublishedAt)
	}
}

// Feed returns the most recent publicly visible posts for syndication.
func (s *BlogService) Feed(ctx context.Context, limit int) ([]types.BlogPost, error) {
	posts, _, err := s.repo.ListPosts(ctx, s.publicFilter(store.PostFilter{Limit: limit}))
	return posts, err
}

func (s *BlogService) ListCategories(ctx context.Context) ([]types.Category, error) {
	return s.repo.ListCategories(ctx)
}

// CreateCategory adds a category. Requires MANAGE_BLOG; duplicate slugs
// conflict.
func (s *BlogService) CreateCategory(ctx context.Context, actor types.User, name string) (types.Category, error) {
	if !authz.HasCapability(actor, authz.ManageBlog) {
		return types.Category{}, ErrDenied
	}
	if name == "" {
		return types.Category{}, ErrValidation
	}
	return s.repo.CreateCategory(ctx, types.Category{Name: name, Slug: slug.Make(name)})
}

func (s *BlogService) DeleteCategory(ctx context.Context, actor types.User, id int) error {
	if !authz.HasCapability(actor, authz.ManageBlog) {
		return ErrDenied
	}
	return s.repo.DeleteCategory(ctx, id)
}

func (s *BlogService) ListTags(ctx context.Context) ([]types.Tag, error) {
	return s.repo.ListTags(ctx)
}

// CreateTag adds a tag. Requires MANAGE_BLOG; duplicate slugs conflict.
func (s *BlogService) CreateTag(ctx context.Context, actor types.User, name string) (types.Tag, error) {
	if !authz.HasCapability(actor, authz.ManageBlog) {
		return types.Tag{}, ErrDenied
	}
	if name == "" {
		return types.Tag{}, ErrValidation
	}
	return s.repo.CreateTag(ctx, types.Tag{Name: name, Slug: slug.Make(name)})
}

func (s *BlogService) DeleteTag(ctx context.Context, actor types.User, id int) error {
	if !authz.HasCapability(actor, authz.ManageBlog) {
		return ErrDenied
	}
	return s.repo.DeleteTag(ctx, id)
}

// ResolveTags maps tag slugs to stored tags for attaching to a post. An
// unknown slug is a problem with the request body, not a missing
// resource, so it surfaces as a validation error.
func (s *BlogService) ResolveTags(ctx context.Context, slugs []string) ([]types.Tag, error) {
	tags, err := s.repo.GetTagsBySlugs(ctx, slugs)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown tag slug", ErrValidation)
		}
		return nil, err
	}
	return tags, nil
}

// SubmitComment records a reader comment on a publicly visible post. It
// lands unapproved and waits for moderation.
func (s *BlogService) SubmitComment(ctx context.Context, postSlug string, c types.Comment) (types.Comment, error) {
	post, err := s.GetPublicBySlug(ctx, postSlug)
	if err != nil {
		return types.Comment{}, err
	}
	if c.AuthorName == "" || c.Body == "" {
		return types.Comment{}, ErrValidation
	}
	c.PostID = post.ID
	c.Approved = false
	return s.repo.CreateComment(ctx, c)
}

// ListPublicComments returns a visible post's approved comments.
func (s *BlogService) ListPublicComments(ctx context.Context, postSlug string) ([]types.Comment, error) {
	post, err := s.GetPublicBySlug(ctx, postSlug)
	if err != nil {
		return nil, err
	}
	return s.repo.ListComments(ctx, post.ID, true)
}

// ListComments returns all of a post's comments for moderation.
// Requires MANAGE_BLOG.
func (s *BlogService) ListComments(ctx context.Context, actor types.User, postID int) ([]types.Comment, error) {
	if !authz.HasCapability(actor, authz.ManageBlog) {
		return nil, ErrDenied
	}
	return s.repo.ListComments(ctx, postID, false)
}

// ApproveComment makes a comment publicly visible. Requires MANAGE_BLOG.
func (s *BlogService) ApproveComment(ctx context.Context, actor types.User, id int) error {
	if !authz.HasCapability(actor, authz.ManageBlog) {
		return ErrDenied
	}
	return s.repo.ApproveComment(ctx, id)
}

// DeleteComment removes a comment. Requires MANAGE_BLOG.
func (s *BlogService) DeleteComment(ctx context.Context, actor types.User, id int) error {
	if !authz.HasCapability(actor, authz.ManageBlog) {
		return ErrDenied
	}
	return s.repo.DeleteComment(ctx, id)
}
