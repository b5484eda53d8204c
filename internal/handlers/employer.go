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

// EmployerHandler provides the employer-facing endpoints: company
// profile, job postings, and applicant review.
type EmployerHandler struct {
	userService        *services.UserService
	jobService         *services.JobService
	applicationService *services.ApplicationService
}

// NewEmployerHandler constructs a handler with the provided services.
func NewEmployerHandler(userService *services.UserService, jobService *services.JobService, applicationService *services.ApplicationService) *EmployerHandler {
	return &EmployerHandler{
		userService:        userService,
		jobService:         jobService,
		applicationService: applicationService,
	}
}

// EmployerRouter registers employer routes on the given router. All
// routes require authentication; the services enforce ownership and the
// pending-approval gate.
func EmployerRouter(r chi.Router, userService *services.UserService, jobService *services.JobService, applicationService *services.ApplicationService, authMiddleware func(http.Handler) http.Handler) {
	handler := NewEmployerHandler(userService, jobService, applicationService)

	r.Use(authMiddleware)
	r.Get("/profile", handler.GetProfile)
	r.Put("/profile", handler.UpdateProfile)
	r.Post("/jobs", handler.CreateJob)
	r.Get("/jobs", handler.ListJobs)
	r.Route("/jobs/{jobID}", func(r chi.Router) {
		r.Get("/", handler.GetJob)
		r.Put("/", handler.UpdateJob)
		r.Delete("/", handler.DeleteJob)
		r.Get("/applications", handler.ListApplicants)
	})
	r.Patch("/applications/{applicationID}", handler.UpdateApplicationStatus)
}

func (h *EmployerHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	profile, err := h.userService.GetEmployerProfile(r.Context(), user.ID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusInternalServerError, "failed to load profile")
		return
	}
	profile.UserID = user.ID
	writeJSON(w, http.StatusOK, profile)
}

func (h *EmployerHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var profile types.EmployerProfile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	profile.UserID = user.ID

	if err := h.userService.UpdateEmployerProfile(r.Context(), user, profile); err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *EmployerHandler) CreateJob(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	req, err := parseJobRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	job, err := h.jobService.Create(r.Context(), user, req.toJob())
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, job)
}

func (h *EmployerHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	jobs, err := h.jobService.ListByEmployer(r.Context(), user)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, jobs)
}

func (h *EmployerHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := parseIDParam(chi.URLParam(r, "jobID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid job id")
		return
	}

	job, err := h.jobService.Get(r.Context(), user, id)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// UpdateJob edits an owned posting. The edit resets the posting to
// pending moderation.
func (h *EmployerHandler) UpdateJob(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := parseIDParam(chi.URLParam(r, "jobID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid job id")
		return
	}

	req, err := parseJobRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	job := req.toJob()
	job.ID = id
	updated, err := h.jobService.Update(r.Context(), user, job)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *EmployerHandler) DeleteJob(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := parseIDParam(chi.URLParam(r, "jobID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid job id")
		return
	}

	if err := h.jobService.Delete(r.Context(), user, id); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *EmployerHandler) ListApplicants(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := parseIDParam(chi.URLParam(r, "jobID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid job id")
		return
	}

	apps, err := h.applicationService.ListForJob(r.Context(), user, id)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, apps)
}

func (h *EmployerHandler) UpdateApplicationStatus(w http.ResponseWriter, r *http.Request) {
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

	var req StatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	next := types.ApplicationStatus(strings.TrimSpace(req.Status))
	if err := h.applicationService.UpdateStatus(r.Context(), user, id, next); err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": string(next)})
}

// JobRequest is the job create/update payload.
type JobRequest struct {
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Company         string   `json:"company"`
	Location        string   `json:"location"`
	Salary          string   `json:"salary"`
	JobType         string   `json:"job_type"`
	ExperienceLevel string   `json:"experience_level"`
	Skills          []string `json:"skills"`
}

func (req JobRequest) toJob() types.Job {
	return types.Job{
		Title:           req.Title,
		Description:     req.Description,
		Company:         req.Company,
		Location:        req.Location,
		Salary:          req.Salary,
		JobType:         req.JobType,
		ExperienceLevel: req.ExperienceLevel,
		Skills:          req.Skills,
	}
}

// StatusRequest carries a bare status change.
type StatusRequest struct {
	Status string `json:"status"`
}

func parseJobRequest(r *http.Request) (JobRequest, error) {
	var req JobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return JobRequest{}, errors.New("invalid request")
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	req.Company = strings.TrimSpace(req.Company)
	if req.Title == "" {
		return JobRequest{}, errors.New("title is required")
	}
	if req.Description == "" {
		return JobRequest{}, errors.New("description is required")
	}
	if req.Company == "" {
		return JobRequest{}, errors.New("company is required")
	}
	return req, nil
}
