package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/feeds"
	"github.com/jobnexus/apiserver/internal/services"
	"github.com/jobnexus/apiserver/internal/store"
	"github.com/jobnexus/apiserver/types"
)

const feedLimit = 20

// BlogHandler provides the public content directory endpoints.
type BlogHandler struct {
	blogService *services.BlogService

	// siteURL prefixes feed item links.
	siteURL string
}

// NewBlogHandler constructs a handler with the provided service.
func NewBlogHandler(blogService *services.BlogService, siteURL string) *BlogHandler {
	return &BlogHandler{blogService: blogService, siteURL: strings.TrimRight(siteURL, "/")}
}

// BlogRouter registers public blog routes on the given router.
func BlogRouter(r chi.Router, blogService *services.BlogService, siteURL string) {
	handler := NewBlogHandler(blogService, siteURL)

	r.Get("/posts", handler.ListPosts)
	r.Get("/posts/{slug}", handler.GetPost)
	r.Get("/posts/{slug}/related", handler.RelatedPosts)
	r.Get("/posts/{slug}/comments", handler.ListComments)
	r.Post("/posts/{slug}/comments", handler.SubmitComment)
	r.Get("/categories", handler.ListCategories)
	r.Get("/tags", handler.ListTags)
	r.Get("/feed", handler.Feed)
}

func (h *BlogHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	page, limit, offset, err := parsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	q := r.URL.Query()
	filter := store.PostFilter{
		CategorySlug: strings.TrimSpace(q.Get("category")),
		TagSlug:      strings.TrimSpace(q.Get("tag")),
		Search:       strings.TrimSpace(q.Get("search")),
		Offset:       offset,
		Limit:        limit,
	}

	items, total, err := h.blogService.ListPublic(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list posts")
		return
	}

	writeJSON(w, http.StatusOK, PostListResponse{
		Items: items,
		Page:  page,
		Limit: limit,
		Total: total,
	})
}

func (h *BlogHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	post, err := h.blogService.GetPublicBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (h *BlogHandler) RelatedPosts(w http.ResponseWriter, r *http.Request) {
	limit := 5
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := parseIDParam(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	related, err := h.blogService.Related(r.Context(), chi.URLParam(r, "slug"), limit)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, related)
}

func (h *BlogHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	comments, err := h.blogService.ListPublicComments(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

// SubmitComment records a reader comment. It enters the moderation queue
// unapproved and is invisible until approved.
func (h *BlogHandler) SubmitComment(w http.ResponseWriter, r *http.Request) {
	var req CommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	comment, err := h.blogService.SubmitComment(r.Context(), chi.URLParam(r, "slug"), types.Comment{
		AuthorName:  strings.TrimSpace(req.AuthorName),
		AuthorEmail: strings.TrimSpace(req.AuthorEmail),
		Body:        strings.TrimSpace(req.Body),
	})
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

func (h *BlogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.blogService.ListCategories(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list categories")
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

func (h *BlogHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.blogService.ListTags(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list tags")
		return
	}
	writeJSON(w, http.StatusOK, tags)
}

// Feed serves the most recent visible posts as RSS.
func (h *BlogHandler) Feed(w http.ResponseWriter, r *http.Request) {
	posts, err := h.blogService.Feed(r.Context(), feedLimit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to build feed")
		return
	}

	feed := &feeds.Feed{
		Title:       "JobNexus Blog",
		Link:        &feeds.Link{Href: h.siteURL + "/blog"},
		Description: "Career advice and hiring insights",
		Created:     time.Now(),
	}
	for _, post := range posts {
		item := &feeds.Item{
			Title:       post.Title,
			Link:        &feeds.Link{Href: h.siteURL + "/blog/posts/" + post.Slug},
			Description: post.Excerpt,
			Id:          post.Slug,
		}
		if post.PublishedAt != nil {
			item.Created = *post.PublishedAt
		}
		feed.Items = append(feed.Items, item)
	}

	rss, err := feed.ToRss()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to build feed")
		return
	}
	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	_, _ = w.Write([]byte(rss))
}

// CommentRequest is the public comment submission payload.
type CommentRequest struct {
	AuthorName  string `json:"author_name"`
	AuthorEmail string `json:"author_email"`
	Body        string `json:"body"`
}

// PostListResponse is the paginated post list payload.
type PostListResponse struct {
	Items []types.BlogPost `json:"items"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
	Total int              `json:"total"`
}
