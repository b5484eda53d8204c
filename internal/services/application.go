package services

import (
	"context"
	"slices"

	"github.com/jobnexus/apiserver/internal/authz"
	"github.com/jobnexus/apiserver/internal/events"
	"github.com/jobnexus/apiserver/internal/store"
	"github.com/jobnexus/apiserver/types"
)

// ApplicationRepository defines persistence operations for applications.
type ApplicationRepository interface {
	Get(ctx context.Context, id int) (types.Application, error)
	Create(ctx context.Context, app types.Application) (types.Application, error)
	UpdateStatus(ctx context.Context, id int, status types.ApplicationStatus) error
	Delete(ctx context.Context, id int) error
	ListByCandidate(ctx context.Context, candidateID int) ([]types.Application, error)
	ListByJob(ctx context.Context, jobID int) ([]types.Application, error)
	Count(ctx context.Context) (int, error)
}

// ApplicationService tracks candidate-to-job applications.
type ApplicationService struct {
	repo    ApplicationRepository
	jobs    JobRepository
	emitter events.Emitter
}

func NewApplicationService(repo ApplicationRepository, jobs JobRepository, emitter events.Emitter) *ApplicationService {
	if emitter == nil {
		emitter = events.Nop{}
	}
	return &ApplicationService{repo: repo, jobs: jobs, emitter: emitter}
}

// Submit creates an application for the acting candidate. The job must
// be approved; a repeat submission for the same (candidate, job) pair
// surfaces the store's duplicate error, backed by a unique index.
func (s *ApplicationService) Submit(ctx context.Context, actor types.User, jobID int, coverLetter string) (types.Application, error) {
	if !authz.CandidateAction(actor, actor.ID).Allowed() {
		return types.Application{}, ErrDenied
	}
	job, err := s.jobs.Get(ctx, jobID)
	if err != nil {
		return types.Application{}, err
	}
	if job.Status != types.JobApproved {
		return types.Application{}, ErrJobNotOpen
	}

	created, err := s.repo.Create(ctx, types.Application{
		JobID:       jobID,
		CandidateID: actor.ID,
		CoverLetter: coverLetter,
		Status:      types.ApplicationPending,
	})
	if err != nil {
		return types.Application{}, err
	}
	s.emitter.Emit(ctx, "application.created", map[string]string{
		"application_id": itoa(created.ID),
		"job_id":         itoa(jobID),
		"candidate_id":   itoa(actor.ID),
	})
	return created, nil
}

// UpdateStatus moves an application into one of the review states. Only
// the employer owning the referenced job may do this, and not while the
// account is still pending approval. No ordering holds between the
// review states.
func (s *ApplicationService) UpdateStatus(ctx context.Context, actor types.User, id int, next types.ApplicationStatus) error {
	if !slices.Contains(types.ReviewStatuses, next) {
		return ErrValidation
	}
	app, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	job, err := s.jobs.Get(ctx, app.JobID)
	if err != nil {
		return err
	}
	switch authz.EmployerAction(actor, job.EmployerID, true) {
	case authz.DenyPending:
		return ErrPendingApproval
	case authz.Deny:
		return ErrDenied
	}
	if err := s.repo.UpdateStatus(ctx, id, next); err != nil {
		return err
	}
	s.emitter.Emit(ctx, "application.status_changed", map[string]string{
		"application_id": itoa(id),
		"status":         string(next),
	})
	return nil
}

// Withdraw removes the acting candidate's own application, and only
// while it is still pending.
func (s *ApplicationService) Withdraw(ctx context.Context, actor types.User, id int) error {
	app, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if !authz.CandidateAction(actor, app.CandidateID).Allowed() {
		return store.ErrNotFound
	}
	if app.Status != types.ApplicationPending {
		return ErrInvalidState
	}
	return s.repo.Delete(ctx, id)
}

// ListForCandidate returns the acting candidate's own applications.
func (s *ApplicationService) ListForCandidate(ctx context.Context, actor types.User) ([]types.Application, error) {
	if !authz.CandidateAction(actor, actor.ID).Allowed() {
		return nil, ErrDenied
	}
	return s.repo.ListByCandidate(ctx, actor.ID)
}

// ListForJob returns the applicants to one of the acting employer's own
// jobs. Denied cross-employer and while the account is pending.
func (s *ApplicationService) ListForJob(ctx context.Context, actor types.User, jobID int) ([]types.Application, error) {
	job, err := s.jobs.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}
	switch authz.EmployerAction(actor, job.EmployerID, true) {
	case authz.DenyPending:
		return nil, ErrPendingApproval
	case authz.Deny:
		return nil, store.ErrNotFound
	}
	return s.repo.ListByJob(ctx, jobID)
}
