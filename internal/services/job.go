package services

import (
	"context"

	"github.com/jobnexus/apiserver/internal/authz"
	"github.com/jobnexus/apiserver/internal/events"
	"github.com/jobnexus/apiserver/internal/store"
	"github.com/jobnexus/apiserver/internal/workflow"
	"github.com/jobnexus/apiserver/types"
)

// JobRepository defines persistence operations for job postings.
type JobRepository interface {
	Get(ctx context.Context, id int) (types.Job, error)
	Create(ctx context.Context, job types.Job) (types.Job, error)
	Update(ctx context.Context, job types.Job) (types.Job, error)
	UpdateStatus(ctx context.Context, id int, status types.JobStatus, approvedBy *int) error
	Delete(ctx context.Context, id int) error
	List(ctx context.Context, filter store.JobFilter) ([]types.Job, int, error)
	CountByStatus(ctx context.Context, status types.JobStatus) (int, error)
}

// JobService encapsulates job posting use-cases and the moderation
// workflow.
type JobService struct {
	repo    JobRepository
	emitter events.Emitter
}

func NewJobService(repo JobRepository, emitter events.Emitter) *JobService {
	if emitter == nil {
		emitter = events.Nop{}
	}
	return &JobService{repo: repo, emitter: emitter}
}

// Create posts a new job for the acting employer. Pending employers are
// gated until approved; every new posting starts pending moderation.
func (s *JobService) Create(ctx context.Context, actor types.User, job types.Job) (types.Job, error) {
	switch authz.EmployerAction(actor, actor.ID, true) {
	case authz.DenyPending:
		return types.Job{}, ErrPendingApproval
	case authz.Deny:
		return types.Job{}, ErrDenied
	}
	job.EmployerID = actor.ID
	job.Status = types.JobPending
	job.ApprovedBy = nil

	created, err := s.repo.Create(ctx, job)
	if err != nil {
		return types.Job{}, err
	}
	s.emitter.Emit(ctx, "job.created", map[string]string{
		"job_id":      itoa(created.ID),
		"employer_id": itoa(actor.ID),
	})
	return created, nil
}

// Update edits an owned posting. Any edit sends the job back through
// moderation, erasing the previous approval decision.
func (s *JobService) Update(ctx context.Context, actor types.User, job types.Job) (types.Job, error) {
	current, err := s.repo.Get(ctx, job.ID)
	if err != nil {
		return types.Job{}, err
	}
	if !authz.EmployerAction(actor, current.EmployerID, false).Allowed() {
		return types.Job{}, ErrDenied
	}
	job.EmployerID = current.EmployerID
	job.Status = types.JobPending
	job.ApprovedBy = nil
	return s.repo.Update(ctx, job)
}

// Delete removes a posting. Allowed to the owning employer at any state,
// or to an admin holding MANAGE_JOBS.
func (s *JobService) Delete(ctx context.Context, actor types.User, id int) error {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if !authz.HasCapability(actor, authz.ManageJobs) &&
		!authz.EmployerAction(actor, current.EmployerID, false).Allowed() {
		return ErrDenied
	}
	return s.repo.Delete(ctx, id)
}

// Moderate transitions a posting's moderation status. Requires
// MANAGE_JOBS; an invalid transition is rejected with no state change.
func (s *JobService) Moderate(ctx context.Context, actor types.User, id int, next types.JobStatus) error {
	if !authz.HasCapability(actor, authz.ManageJobs) {
		return ErrDenied
	}
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := workflow.Jobs.Step(current.Status, next); err != nil {
		return err
	}
	var approvedBy *int
	if next == types.JobApproved {
		approvedBy = &actor.ID
	}
	if err := s.repo.UpdateStatus(ctx, id, next, approvedBy); err != nil {
		return err
	}
	s.emitter.Emit(ctx, "job.status_changed", map[string]string{
		"job_id": itoa(id),
		"status": string(next),
		"by":     itoa(actor.ID),
	})
	return nil
}

// ListPublic returns approved postings only, with search filters.
func (s *JobService) ListPublic(ctx context.Context, filter store.JobFilter) ([]types.Job, int, error) {
	filter.Status = types.JobApproved
	filter.EmployerID = 0
	return s.repo.List(ctx, filter)
}

// GetPublic returns an approved posting. Pending and rejected postings
// yield NotFound, indistinguishable from a missing id.
func (s *JobService) GetPublic(ctx context.Context, id int) (types.Job, error) {
	job, err := s.repo.Get(ctx, id)
	if err != nil {
		return types.Job{}, err
	}
	if job.Status != types.JobApproved {
		return types.Job{}, store.ErrNotFound
	}
	return job, nil
}

// Get returns a posting regardless of status, for its owner or an admin
// holding MANAGE_JOBS.
func (s *JobService) Get(ctx context.Context, actor types.User, id int) (types.Job, error) {
	job, err := s.repo.Get(ctx, id)
	if err != nil {
		return types.Job{}, err
	}
	if !authz.HasCapability(actor, authz.ManageJobs) &&
		!authz.EmployerAction(actor, job.EmployerID, false).Allowed() {
		return types.Job{}, store.ErrNotFound
	}
	return job, nil
}

// ListByEmployer returns the acting employer's own postings in any state.
func (s *JobService) ListByEmployer(ctx context.Context, actor types.User) ([]types.Job, error) {
	jobs, _, err := s.repo.List(ctx, store.JobFilter{EmployerID: actor.ID})
	return jobs, err
}

// ListForModeration returns postings for the admin review queue.
// Requires MANAGE_JOBS.
func (s *JobService) ListForModeration(ctx context.Context, actor types.User, status types.JobStatus) ([]types.Job, error) {
	if !authz.HasCapability(actor, authz.ManageJobs) {
		return nil, ErrDenied
	}
	jobs, _, err := s.repo.List(ctx, store.JobFilter{Status: status})
	return jobs, err
}
