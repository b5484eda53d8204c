package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jobnexus/apiserver/internal/services"
	"github.com/jobnexus/apiserver/internal/store"
	"github.com/jobnexus/apiserver/types"
	"golang.org/x/crypto/bcrypt"
)

// AdminHandler provides the admin control surface: sub-admin management,
// account moderation, job moderation, and dashboard analytics. Capability
// checks live in the services; the handlers only translate requests.
type AdminHandler struct {
	userService      *services.UserService
	jobService       *services.JobService
	analyticsService *services.AnalyticsService
}

// NewAdminHandler constructs a handler with the provided services.
func NewAdminHandler(userService *services.UserService, jobService *services.JobService, analyticsService *services.AnalyticsService) *AdminHandler {
	return &AdminHandler{
		userService:      userService,
		jobService:       jobService,
		analyticsService: analyticsService,
	}
}

// AdminRouter registers admin routes on the given router. All routes
// require authentication.
func AdminRouter(r chi.Router, userService *services.UserService, jobService *services.JobService, analyticsService *services.AnalyticsService, authMiddleware func(http.Handler) http.Handler) {
	handler := NewAdminHandler(userService, jobService, analyticsService)

	r.Use(authMiddleware)

	r.Route("/subadmins", func(r chi.Router) {
		r.Get("/", handler.ListSubAdmins)
		r.Post("/", handler.CreateSubAdmin)
		r.Put("/{userID}", handler.UpdateSubAdmin)
		r.Delete("/{userID}", handler.DeleteSubAdmin)
	})

	r.Get("/users", handler.ListUsers)
	r.Patch("/users/{userID}/status", handler.SetAccountStatus)
	r.Get("/employers/pending", handler.ListPendingEmployers)

	r.Get("/jobs", handler.ListJobs)
	r.Patch("/jobs/{jobID}/status", handler.ModerateJob)
	r.Delete("/jobs/{jobID}", handler.DeleteJob)

	r.Get("/analytics", handler.Analytics)
}

func (h *AdminHandler) ListSubAdmins(w http.ResponseWriter, r *http.Request) {
	actor, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	admins, err := h.userService.ListSubAdmins(r.Context(), actor)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, admins)
}

func (h *AdminHandler) CreateSubAdmin(w http.ResponseWriter, r *http.Request) {
	actor, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req SubAdminRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	if req.Email == "" || req.Name == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "missing required fields")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	created, err := h.userService.CreateSubAdmin(r.Context(), actor, types.User{
		Email:        req.Email,
		Name:         req.Name,
		Permissions:  req.Permissions,
		PasswordHash: string(hashed),
	})
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *AdminHandler) UpdateSubAdmin(w http.ResponseWriter, r *http.Request) {
	actor, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := parseIDParam(chi.URLParam(r, "userID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var req SubAdminUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	updated, err := h.userService.UpdateSubAdmin(r.Context(), actor, id,
		strings.TrimSpace(req.Name), req.Permissions, types.AccountStatus(req.Status))
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *AdminHandler) DeleteSubAdmin(w http.ResponseWriter, r *http.Request) {
	actor, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := parseIDParam(chi.URLParam(r, "userID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	if err := h.userService.DeleteSubAdmin(r.Context(), actor, id); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	actor, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	q := r.URL.Query()
	filter := store.UserFilter{
		Role:   types.Role(strings.TrimSpace(q.Get("role"))),
		Status: types.AccountStatus(strings.TrimSpace(q.Get("status"))),
	}

	users, err := h.userService.ListUsers(r.Context(), actor, filter)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// SetAccountStatus approves, rejects, blocks, or re-activates an account
// through the employer approval machine.
func (h *AdminHandler) SetAccountStatus(w http.ResponseWriter, r *http.Request) {
	actor, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := parseIDParam(chi.URLParam(r, "userID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var req StatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	next := types.AccountStatus(strings.TrimSpace(req.Status))
	if err := h.userService.SetAccountStatus(r.Context(), actor, id, next); err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": string(next)})
}

func (h *AdminHandler) ListPendingEmployers(w http.ResponseWriter, r *http.Request) {
	actor, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	employers, err := h.userService.ListPendingEmployers(r.Context(), actor)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, employers)
}

// ListJobs returns the moderation queue, optionally narrowed by status.
func (h *AdminHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	actor, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	status := types.JobStatus(strings.TrimSpace(r.URL.Query().Get("status")))
	jobs, err := h.jobService.ListForModeration(r.Context(), actor, status)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, jobs)
}

func (h *AdminHandler) ModerateJob(w http.ResponseWriter, r *http.Request) {
	actor, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := parseIDParam(chi.URLParam(r, "jobID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid job id")
		return
	}

	var req StatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	next := types.JobStatus(strings.TrimSpace(req.Status))
	if err := h.jobService.Moderate(r.Context(), actor, id, next); err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": string(next)})
}

func (h *AdminHandler) DeleteJob(w http.ResponseWriter, r *http.Request) {
	actor, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := parseIDParam(chi.URLParam(r, "jobID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid job id")
		return
	}

	if err := h.jobService.Delete(r.Context(), actor, id); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	actor, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	snapshot, err := h.analyticsService.Snapshot(r.Context(), actor)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

// SubAdminRequest is the sub-admin creation payload.
type SubAdminRequest struct {
	Email       string   `json:"email"`
	Name        string   `json:"name"`
	Password    string   `json:"password"`
	Permissions []string `json:"permissions"`
}

// SubAdminUpdateRequest updates a sub-admin's name, grants, or status.
// Nil permissions leaves the grants unchanged.
type SubAdminUpdateRequest struct {
	Name        string   `json:"name"`
	Permissions []string `json:"permissions"`
	Status      string   `json:"status"`
}
