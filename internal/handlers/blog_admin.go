package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jobnexus/apiserver/internal/services"
	"github.com/jobnexus/apiserver/internal/store"
	"github.com/jobnexus/apiserver/types"
)

// BlogAdminHandler provides the editorial endpoints: post CRUD, the
// editorial workflow, taxonomy management, and comment moderation.
type BlogAdminHandler struct {
	blogService *services.BlogService
}

// NewBlogAdminHandler constructs a handler with the provided service.
func NewBlogAdminHandler(blogService *services.BlogService) *BlogAdminHandler {
	return &BlogAdminHandler{blogService: blogService}
}

// BlogAdminRouter registers editorial routes on the given router. All
// routes require authentication; the service gates on the blog
// capability.
func BlogAdminRouter(r chi.Router, blogService *services.BlogService, authMiddleware func(http.Handler) http.Handler) {
	handler := NewBlogAdminHandler(blogService)

	r.Use(authMiddleware)

	r.Route("/posts", func(r chi.Router) {
		r.Get("/", handler.ListPosts)
		r.Post("/", handler.CreatePost)
		r.Route("/{postID}", func(r chi.Router) {
			r.Get("/", handler.GetPost)
			r.Put("/", handler.UpdatePost)
			r.Delete("/", handler.DeletePost)
			r.Post("/transition", handler.TransitionPost)
			r.Get("/comments", handler.ListComments)
		})
	})

	r.Post("/categories", handler.CreateCategory)
	r.Delete("/categories/{categoryID}", handler.DeleteCategory)
	r.Post("/tags", handler.CreateTag)
	r.Delete("/tags/{tagID}", handler.DeleteTag)

	r.Post("/comments/{commentID}/approve", handler.ApproveComment)
	r.Delete("/comments/{commentID}", handler.DeleteComment)
}

func (h *BlogAdminHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	actor, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	page, limit, offset, err := parsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	filter := store.PostFilter{
		Status: types.PostStatus(strings.TrimSpace(r.URL.Query().Get("status"))),
		Offset: offset,
		Limit:  limit,
	}

	items, total, err := h.blogService.ListPosts(r.Context(), actor, filter)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, PostListResponse{
		Items: items,
		Page:  page,
		Limit: limit,
		Total: total,
	})
}

func (h *BlogAdminHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	actor, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	req, err := h.parsePostRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	post, err := h.buildPost(r, req)
	if err != nil {
		respondError(w, err)
		return
	}

	created, err := h.blogService.CreatePost(r.Context(), actor, post)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *BlogAdminHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	actor, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := parseIDParam(chi.URLParam(r, "postID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid post id")
		return
	}

	post, err := h.blogService.GetPost(r.Context(), actor, id)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (h *BlogAdminHandler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	actor, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := parseIDParam(chi.URLParam(r, "postID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid post id")
		return
	}

	req, err := h.parsePostRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	post, err := h.buildPost(r, req)
	if err != nil {
		respondError(w, err)
		return
	}
	post.ID = id

	updated, err := h.blogService.UpdatePost(r.Context(), actor, post)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *BlogAdminHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	actor, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := parseIDParam(chi.URLParam(r, "postID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid post id")
		return
	}

	if err := h.blogService.DeletePost(r.Context(), actor, id); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// TransitionPost moves a post through the editorial workflow. An
// optional publish_at schedules visibility.
func (h *BlogAdminHandler) TransitionPost(w http.ResponseWriter, r *http.Request) {
	actor, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := parseIDParam(chi.URLParam(r, "postID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid post id")
		return
	}

	var req TransitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	next := types.PostStatus(strings.TrimSpace(req.Status))
	if err := h.blogService.Transition(r.Context(), actor, id, next, req.PublishAt); err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": string(next)})
}

func (h *BlogAdminHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	actor, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := parseIDParam(chi.URLParam(r, "postID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid post id")
		return
	}

	comments, err := h.blogService.ListComments(r.Context(), actor, id)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

func (h *BlogAdminHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	actor, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req NameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	category, err := h.blogService.CreateCategory(r.Context(), actor, strings.TrimSpace(req.Name))
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, category)
}

func (h *BlogAdminHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	actor, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := parseIDParam(chi.URLParam(r, "categoryID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid category id")
		return
	}

	if err := h.blogService.DeleteCategory(r.Context(), actor, id); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *BlogAdminHandler) CreateTag(w http.ResponseWriter, r *http.Request) {
	actor, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req NameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	tag, err := h.blogService.CreateTag(r.Context(), actor, strings.TrimSpace(req.Name))
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tag)
}

func (h *BlogAdminHandler) DeleteTag(w http.ResponseWriter, r *http.Request) {
	actor, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := parseIDParam(chi.URLParam(r, "tagID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid tag id")
		return
	}

	if err := h.blogService.DeleteTag(r.Context(), actor, id); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *BlogAdminHandler) ApproveComment(w http.ResponseWriter, r *http.Request) {
	actor, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := parseIDParam(chi.URLParam(r, "commentID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid comment id")
		return
	}

	if err := h.blogService.ApproveComment(r.Context(), actor, id); err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"approved": "true"})
}

func (h *BlogAdminHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	actor, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := parseIDParam(chi.URLParam(r, "commentID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid comment id")
		return
	}

	if err := h.blogService.DeleteComment(r.Context(), actor, id); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PostRequest is the post create/update payload. Tags are referenced by
// slug and must already exist.
type PostRequest struct {
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	Excerpt    string   `json:"excerpt"`
	CategoryID *int     `json:"category_id"`
	TagSlugs   []string `json:"tags"`
}

// TransitionRequest moves a post to a new editorial state.
type TransitionRequest struct {
	Status    string     `json:"status"`
	PublishAt *time.Time `json:"publish_at"`
}

// NameRequest carries a bare name for taxonomy creation.
type NameRequest struct {
	Name string `json:"name"`
}

var (
	errInvalidRequest = errors.New("invalid request")
	errTitleRequired  = errors.New("title is required")
)

func (h *BlogAdminHandler) parsePostRequest(r *http.Request) (PostRequest, error) {
	var req PostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return PostRequest{}, errInvalidRequest
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return PostRequest{}, errTitleRequired
	}
	return req, nil
}

func (h *BlogAdminHandler) buildPost(r *http.Request, req PostRequest) (types.BlogPost, error) {
	tags, err := h.blogService.ResolveTags(r.Context(), req.TagSlugs)
	if err != nil {
		return types.BlogPost{}, err
	}
	return types.BlogPost{
		Title:      req.Title,
		Content:    req.Content,
		Excerpt:    req.Excerpt,
		CategoryID: req.CategoryID,
		Tags:       tags,
	}, nil
}
