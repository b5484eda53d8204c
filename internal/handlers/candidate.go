package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jobnexus/apiserver/internal/services"
	"github.com/jobnexus/apiserver/internal/store"
	"github.com/jobnexus/apiserver/types"
)

// CandidateHandler provides the candidate-facing endpoints: profile and
// application tracking.
type CandidateHandler struct {
	userService        *services.UserService
	applicationService *services.ApplicationService
}

// NewCandidateHandler constructs a handler with the provided services.
func NewCandidateHandler(userService *services.UserService, applicationService *services.ApplicationService) *CandidateHandler {
	return &CandidateHandler{
		userService:        userService,
		applicationService: applicationService,
	}
}

// CandidateRouter registers candidate routes on the given router. All
// routes require authentication.
func CandidateRouter(r chi.Router, userService *services.UserService, applicationService *services.ApplicationService, authMiddleware func(http.Handler) http.Handler) {
	handler := NewCandidateHandler(userService, applicationService)

	r.Use(authMiddleware)
	r.Get("/profile", handler.GetProfile)
	r.Put("/profile", handler.UpdateProfile)
	r.Post("/applications", handler.Apply)
	r.Get("/applications", handler.ListApplications)
	r.Delete("/applications/{applicationID}", handler.Withdraw)
}

func (h *CandidateHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	// A missing profile reads as an empty one; every candidate has a
	// profile slot from the moment the account exists.
	profile, err := h.userService.GetCandidateProfile(r.Context(), user.ID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusInternalServerError, "failed to load profile")
		return
	}
	profile.UserID = user.ID
	writeJSON(w, http.StatusOK, profile)
}

func (h *CandidateHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var profile types.CandidateProfile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	profile.UserID = user.ID

	if err := h.userService.UpdateCandidateProfile(r.Context(), user, profile); err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// Apply submits an application to an approved job.
func (h *CandidateHandler) Apply(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req ApplyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if req.JobID < 1 {
		writeError(w, http.StatusBadRequest, "invalid job id")
		return
	}

	app, err := h.applicationService.Submit(r.Context(), user, req.JobID, strings.TrimSpace(req.CoverLetter))
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, app)
}

func (h *CandidateHandler) ListApplications(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	apps, err := h.applicationService.ListForCandidate(r.Context(), user)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, apps)
}

func (h *CandidateHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := parseIDParam(chi.URLParam(r, "applicationID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid application id")
		return
	}

	if err := h.applicationService.Withdraw(r.Context(), user, id); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ApplyRequest is the application submission payload.
type ApplyRequest struct {
	JobID       int    `json:"job_id"`
	CoverLetter string `json:"cover_letter"`
}
