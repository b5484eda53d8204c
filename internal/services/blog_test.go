package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jobnexus/apiserver/internal/authz"
	"github.com/jobnexus/apiserver/internal/store"
	"github.com/jobnexus/apiserver/internal/workflow"
	"github.com/jobnexus/apiserver/types"
)

func blogFixture(t *testing.T) (*BlogService, *fakeBlogRepo) {
	t.Helper()
	repo := newFakeBlogRepo()
	svc := NewBlogService(repo, nil)
	return svc, repo
}

func blogEditor() types.User {
	return subAdmin(9, string(authz.ManageBlog))
}

func TestCreatePostSlugAndDraftStatus(t *testing.T) {
	svc, _ := blogFixture(t)

	post, err := svc.CreatePost(context.Background(), blogEditor(), types.BlogPost{
		Title:  "Ace Your Next Interview!",
		Status: types.PostPublished, // client-supplied status is ignored
	})
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}
	if post.Slug != "ace-your-next-interview" {
		t.Fatalf("slug = %q", post.Slug)
	}
	if post.Status != types.PostDraft {
		t.Fatalf("status = %q, want draft", post.Status)
	}
}

func TestCreatePostRequiresBlogCapability(t *testing.T) {
	svc, _ := blogFixture(t)

	_, err := svc.CreatePost(context.Background(), subAdmin(9, string(authz.ManageJobs)), types.BlogPost{Title: "x"})
	if !errors.Is(err, ErrDenied) {
		t.Fatalf("error = %v, want ErrDenied", err)
	}
}

func TestCreatePostDuplicateSlugConflicts(t *testing.T) {
	svc, _ := blogFixture(t)

	if _, err := svc.CreatePost(context.Background(), blogEditor(), types.BlogPost{Title: "Same Title"}); err != nil {
		t.Fatalf("first CreatePost: %v", err)
	}
	if _, err := svc.CreatePost(context.Background(), blogEditor(), types.BlogPost{Title: "Same Title"}); !errors.Is(err, store.ErrDuplicate) {
		t.Fatalf("second CreatePost error = %v, want ErrDuplicate", err)
	}
}

func TestTransitionDraftToPublished(t *testing.T) {
	svc, repo := blogFixture(t)
	post, _ := svc.CreatePost(context.Background(), blogEditor(), types.BlogPost{Title: "Hello"})

	if err := svc.Transition(context.Background(), blogEditor(), post.ID, types.PostPublished, nil); err != nil {
		t.Fatalf("Transition: %v", err)
	}
	got, _ := repo.GetPost(context.Background(), post.ID)
	if got.Status != types.PostPublished {
		t.Fatalf("status = %q, want published", got.Status)
	}
	if got.PublishedAt == nil {
		t.Fatalf("PublishedAt not set on publish")
	}
}

func TestPublishOutOfReviewRequiresSuperAdmin(t *testing.T) {
	svc, repo := blogFixture(t)
	post, _ := svc.CreatePost(context.Background(), blogEditor(), types.BlogPost{Title: "Hello"})

	if err := svc.Transition(context.Background(), blogEditor(), post.ID, types.PostPendingReview, nil); err != nil {
		t.Fatalf("submit for review: %v", err)
	}

	err := svc.Transition(context.Background(), blogEditor(), post.ID, types.PostPublished, nil)
	if !errors.Is(err, ErrDenied) {
		t.Fatalf("editor publishing out of review error = %v, want ErrDenied", err)
	}
	got, _ := repo.GetPost(context.Background(), post.ID)
	if got.Status != types.PostPendingReview {
		t.Fatalf("status mutated to %q on denied publish", got.Status)
	}

	if err := svc.Transition(context.Background(), superAdmin(), post.ID, types.PostPublished, nil); err != nil {
		t.Fatalf("super-admin publish: %v", err)
	}
}

func TestTransitionRejectsInvalidStep(t *testing.T) {
	svc, _ := blogFixture(t)
	post, _ := svc.CreatePost(context.Background(), blogEditor(), types.BlogPost{Title: "Hello"})

	err := svc.Transition(context.Background(), superAdmin(), post.ID, "archived", nil)
	var invalid *workflow.InvalidTransitionError
	if !errors.As(err, &invalid) {
		t.Fatalf("error = %v, want InvalidTransitionError", err)
	}
}

func TestScheduledPostInvisibleUntilPublishTime(t *testing.T) {
	svc, _ := blogFixture(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	post, _ := svc.CreatePost(context.Background(), blogEditor(), types.BlogPost{Title: "Scheduled"})
	future := now.Add(24 * time.Hour)
	if err := svc.Transition(context.Background(), blogEditor(), post.ID, types.PostPublished, &future); err != nil {
		t.Fatalf("Transition: %v", err)
	}

	if _, err := svc.GetPublicBySlug(context.Background(), "scheduled"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("scheduled post visible early, error = %v", err)
	}
	posts, _, err := svc.ListPublic(context.Background(), store.PostFilter{})
	if err != nil {
		t.Fatalf("ListPublic: %v", err)
	}
	if len(posts) != 0 {
		t.Fatalf("scheduled post leaked into public listing")
	}

	// Once the clock passes the publish time the post appears.
	svc.now = func() time.Time { return future.Add(time.Minute) }
	if _, err := svc.GetPublicBySlug(context.Background(), "scheduled"); err != nil {
		t.Fatalf("post invisible after publish time: %v", err)
	}
}

func TestDraftInvisibleToPublic(t *testing.T) {
	svc, _ := blogFixture(t)
	svc.CreatePost(context.Background(), blogEditor(), types.BlogPost{Title: "Draft Only"})

	if _, err := svc.GetPublicBySlug(context.Background(), "draft-only"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("draft visible publicly, error = %v", err)
	}
}

func TestRelatedRanksCategoryAboveTags(t *testing.T) {
	svc, repo := blogFixture(t)
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }

	catA := 1
	goTag := types.Tag{ID: 10, Name: "Go", Slug: "go"}
	careerTag := types.Tag{ID: 11, Name: "Career", Slug: "career"}

	published := func(title string, categoryID *int, tags ...types.Tag) types.BlogPost {
		post, err := svc.CreatePost(context.Background(), blogEditor(), types.BlogPost{
			Title:      title,
			CategoryID: categoryID,
			Tags:       tags,
		})
		if err != nil {
			t.Fatalf("CreatePost(%s): %v", title, err)
		}
		if err := svc.Transition(context.Background(), blogEditor(), post.ID, types.PostPublished, nil); err != nil {
			t.Fatalf("publish %s: %v", title, err)
		}
		got, _ := repo.GetPost(context.Background(), post.ID)
		return got
	}

	base := published("Base Post", &catA, goTag, careerTag)
	sameCategory := published("Same Category", &catA)
	bothTags := published("Both Tags", nil, goTag, careerTag)
	oneTag := published("One Tag", nil, goTag)
	published("Unrelated", nil)

	related, err := svc.Related(context.Background(), base.Slug, 10)
	if err != nil {
		t.Fatalf("Related: %v", err)
	}
	if len(related) != 3 {
		t.Fatalf("len(related) = %d, want 3", len(related))
	}
	// Shared category (weight 3) outranks two shared tags (2), which
	// outrank one (1).
	if related[0].ID != sameCategory.ID || related[1].ID != bothTags.ID || related[2].ID != oneTag.ID {
		t.Fatalf("related order = %d,%d,%d", related[0].ID, related[1].ID, related[2].ID)
	}
}

func TestSubmitCommentLandsUnapproved(t *testing.T) {
	svc, _ := blogFixture(t)
	post, _ := svc.CreatePost(context.Background(), blogEditor(), types.BlogPost{Title: "Hello"})
	svc.Transition(context.Background(), blogEditor(), post.ID, types.PostPublished, nil)

	comment, err := svc.SubmitComment(context.Background(), "hello", types.Comment{
		AuthorName: "Reader",
		Body:       "Nice post",
		Approved:   true, // client-supplied flag is ignored
	})
	if err != nil {
		t.Fatalf("SubmitComment: %v", err)
	}
	if comment.Approved {
		t.Fatalf("comment approved on submission")
	}

	visible, err := svc.ListPublicComments(context.Background(), "hello")
	if err != nil {
		t.Fatalf("ListPublicComments: %v", err)
	}
	if len(visible) != 0 {
		t.Fatalf("unapproved comment visible publicly")
	}

	if err := svc.ApproveComment(context.Background(), blogEditor(), comment.ID); err != nil {
		t.Fatalf("ApproveComment: %v", err)
	}
	visible, _ = svc.ListPublicComments(context.Background(), "hello")
	if len(visible) != 1 {
		t.Fatalf("approved comment missing from public view")
	}
}

func TestCommentOnDraftReadsAsNotFound(t *testing.T) {
	svc, _ := blogFixture(t)
	svc.CreatePost(context.Background(), blogEditor(), types.BlogPost{Title: "Hidden"})

	_, err := svc.SubmitComment(context.Background(), "hidden", types.Comment{AuthorName: "x", Body: "y"})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("comment on draft error = %v, want ErrNotFound", err)
	}
}

func TestTaxonomySlugConflicts(t *testing.T) {
	svc, _ := blogFixture(t)

	if _, err := svc.CreateCategory(context.Background(), blogEditor(), "Career Advice"); err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	if _, err := svc.CreateCategory(context.Background(), blogEditor(), "Career Advice"); !errors.Is(err, store.ErrDuplicate) {
		t.Fatalf("duplicate category error = %v, want ErrDuplicate", err)
	}

	if _, err := svc.CreateTag(context.Background(), blogEditor(), "Remote Work"); err != nil {
		t.Fatalf("CreateTag: %v", err)
	}
	if _, err := svc.CreateTag(context.Background(), blogEditor(), "Remote Work"); !errors.Is(err, store.ErrDuplicate) {
		t.Fatalf("duplicate tag error = %v, want ErrDuplicate", err)
	}
}

func TestResolveTagsUnknownSlugIsValidation(t *testing.T) {
	svc, _ := blogFixture(t)

	if _, err := svc.CreateTag(context.Background(), blogEditor(), "Remote Work"); err != nil {
		t.Fatalf("CreateTag: %v", err)
	}

	// A request naming a tag that does not exist is bad input, not a
	// missing resource.
	_, err := svc.ResolveTags(context.Background(), []string{"remote-work", "no-such-tag"})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("unknown slug error = %v, want ErrValidation", err)
	}

	tags, err := svc.ResolveTags(context.Background(), []string{"remote-work"})
	if err != nil {
		t.Fatalf("ResolveTags: %v", err)
	}
	if len(tags) != 1 || tags[0].Slug != "remote-work" {
		t.Fatalf("tags = %+v, want the one stored tag", tags)
	}
}
