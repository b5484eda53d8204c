package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jobnexus/apiserver/internal/services"
	"github.com/jobnexus/apiserver/internal/store"
	"github.com/jobnexus/apiserver/types"
)

// JobHandler provides the public job board endpoints. Only approved
// postings are reachable here.
type JobHandler struct {
	jobService *services.JobService
}

// NewJobHandler constructs a handler with the provided service.
func NewJobHandler(jobService *services.JobService) *JobHandler {
	return &JobHandler{jobService: jobService}
}

// JobRouter registers public job routes on the given router.
func JobRouter(r chi.Router, jobService *services.JobService) {
	handler := NewJobHandler(jobService)

	r.Get("/", handler.ListJobs)
	r.Get("/{jobID}", handler.GetJob)
}

func (h *JobHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	page, limit, offset, err := parsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	q := r.URL.Query()
	filter := store.JobFilter{
		Search:   strings.TrimSpace(q.Get("search")),
		Location: strings.TrimSpace(q.Get("location")),
		JobType:  strings.TrimSpace(q.Get("job_type")),
		Offset:   offset,
		Limit:    limit,
	}

	items, total, err := h.jobService.ListPublic(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list jobs")
		return
	}

	writeJSON(w, http.StatusOK, JobListResponse{
		Items: items,
		Page:  page,
		Limit: limit,
		Total: total,
	})
}

func (h *JobHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(chi.URLParam(r, "jobID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid job id")
		return
	}

	job, err := h.jobService.GetPublic(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, job)
}

// JobListResponse is the paginated job list payload.
type JobListResponse struct {
	Items []types.Job `json:"items"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
	Total int         `json:"total"`
}
