package services

import (
	"context"
	"errors"
	"testing"

	"github.com/jobnexus/apiserver/internal/store"
	"github.com/jobnexus/apiserver/types"
)

func applicationFixture(t *testing.T) (*ApplicationService, *fakeApplicationRepo, *fakeJobRepo) {
	t.Helper()
	apps := newFakeApplicationRepo()
	jobs := newFakeJobRepo()
	return NewApplicationService(apps, jobs, nil), apps, jobs
}

func TestSubmitToApprovedJob(t *testing.T) {
	svc, _, jobs := applicationFixture(t)
	job := seedJob(t, jobs, 2, types.JobApproved)

	app, err := svc.Submit(context.Background(), candidate(5), job.ID, "hello")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if app.Status != types.ApplicationPending {
		t.Fatalf("status = %q, want pending", app.Status)
	}
	if app.CandidateID != 5 {
		t.Fatalf("candidate id = %d, want 5", app.CandidateID)
	}
}

func TestSubmitToNonApprovedJob(t *testing.T) {
	svc, _, jobs := applicationFixture(t)

	for _, status := range []types.JobStatus{types.JobPending, types.JobRejected} {
		job := seedJob(t, jobs, 2, status)
		if _, err := svc.Submit(context.Background(), candidate(5), job.ID, ""); !errors.Is(err, ErrJobNotOpen) {
			t.Errorf("Submit to %s job error = %v, want ErrJobNotOpen", status, err)
		}
	}
}

func TestSubmitTwiceConflicts(t *testing.T) {
	svc, _, jobs := applicationFixture(t)
	job := seedJob(t, jobs, 2, types.JobApproved)

	if _, err := svc.Submit(context.Background(), candidate(5), job.ID, ""); err != nil {
		t.Fatalf("first Submit: %v", err)
	}
	if _, err := svc.Submit(context.Background(), candidate(5), job.ID, ""); !errors.Is(err, store.ErrDuplicate) {
		t.Fatalf("second Submit error = %v, want ErrDuplicate", err)
	}
}

func TestSubmitDeniedForEmployers(t *testing.T) {
	svc, _, jobs := applicationFixture(t)
	job := seedJob(t, jobs, 2, types.JobApproved)

	if _, err := svc.Submit(context.Background(), activeEmployer(2), job.ID, ""); !errors.Is(err, ErrDenied) {
		t.Fatalf("employer Submit error = %v, want ErrDenied", err)
	}
}

func TestUpdateStatusAnyReviewState(t *testing.T) {
	svc, _, jobs := applicationFixture(t)
	job := seedJob(t, jobs, 2, types.JobApproved)
	app, _ := svc.Submit(context.Background(), candidate(5), job.ID, "")

	// Hiring pipelines are non-linear: pending -> hired directly is fine.
	if err := svc.UpdateStatus(context.Background(), activeEmployer(2), app.ID, types.ApplicationHired); err != nil {
		t.Fatalf("UpdateStatus(hired): %v", err)
	}
}

func TestUpdateStatusRejectsNonReviewStates(t *testing.T) {
	svc, _, jobs := applicationFixture(t)
	job := seedJob(t, jobs, 2, types.JobApproved)
	app, _ := svc.Submit(context.Background(), candidate(5), job.ID, "")

	for _, next := range []types.ApplicationStatus{types.ApplicationPending, "frozen"} {
		if err := svc.UpdateStatus(context.Background(), activeEmployer(2), app.ID, next); !errors.Is(err, ErrValidation) {
			t.Errorf("UpdateStatus(%s) error = %v, want ErrValidation", next, err)
		}
	}
}

func TestUpdateStatusOwnerEmployerOnly(t *testing.T) {
	svc, _, jobs := applicationFixture(t)
	job := seedJob(t, jobs, 2, types.JobApproved)
	app, _ := svc.Submit(context.Background(), candidate(5), job.ID, "")

	err := svc.UpdateStatus(context.Background(), activeEmployer(3), app.ID, types.ApplicationReviewed)
	if !errors.Is(err, ErrDenied) {
		t.Fatalf("cross-employer UpdateStatus error = %v, want ErrDenied", err)
	}

	err = svc.UpdateStatus(context.Background(), pendingEmployer(2), app.ID, types.ApplicationReviewed)
	if !errors.Is(err, ErrPendingApproval) {
		t.Fatalf("pending employer UpdateStatus error = %v, want ErrPendingApproval", err)
	}
}

func TestWithdrawOnlyWhilePending(t *testing.T) {
	svc, _, jobs := applicationFixture(t)
	job := seedJob(t, jobs, 2, types.JobApproved)
	app, _ := svc.Submit(context.Background(), candidate(5), job.ID, "")

	if err := svc.UpdateStatus(context.Background(), activeEmployer(2), app.ID, types.ApplicationReviewed); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if err := svc.Withdraw(context.Background(), candidate(5), app.ID); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("Withdraw after review error = %v, want ErrInvalidState", err)
	}
}

func TestWithdrawPendingApplication(t *testing.T) {
	svc, apps, jobs := applicationFixture(t)
	job := seedJob(t, jobs, 2, types.JobApproved)
	app, _ := svc.Submit(context.Background(), candidate(5), job.ID, "")

	if err := svc.Withdraw(context.Background(), candidate(5), app.ID); err != nil {
		t.Fatalf("Withdraw: %v", err)
	}
	if _, err := apps.Get(context.Background(), app.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("application still present after withdraw")
	}
}

func TestWithdrawForeignApplicationReadsAsNotFound(t *testing.T) {
	svc, _, jobs := applicationFixture(t)
	job := seedJob(t, jobs, 2, types.JobApproved)
	app, _ := svc.Submit(context.Background(), candidate(5), job.ID, "")

	if err := svc.Withdraw(context.Background(), candidate(6), app.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("foreign Withdraw error = %v, want ErrNotFound", err)
	}
}

func TestListForJobOwnershipAndPendingGate(t *testing.T) {
	svc, repo, jobs := applicationFixture(t)
	job := seedJob(t, jobs, 2, types.JobApproved)
	svc.Submit(context.Background(), candidate(5), job.ID, "")
	repo.profiles[5] = types.CandidateProfile{
		UserID:    5,
		Headline:  "Backend engineer",
		Skills:    []string{"go", "postgres"},
		ResumeURL: "https://cdn.example.com/resume.pdf",
	}

	apps, err := svc.ListForJob(context.Background(), activeEmployer(2), job.ID)
	if err != nil {
		t.Fatalf("owner ListForJob: %v", err)
	}
	if len(apps) != 1 {
		t.Fatalf("len(apps) = %d, want 1", len(apps))
	}
	profile := apps[0].CandidateProfile
	if profile == nil {
		t.Fatalf("applicant listing missing candidate profile")
	}
	if profile.Headline != "Backend engineer" || profile.ResumeURL == "" {
		t.Fatalf("candidate profile = %+v, want joined headline and resume", profile)
	}

	if _, err := svc.ListForJob(context.Background(), activeEmployer(3), job.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("cross-employer ListForJob error = %v, want ErrNotFound", err)
	}
	if _, err := svc.ListForJob(context.Background(), pendingEmployer(2), job.ID); !errors.Is(err, ErrPendingApproval) {
		t.Fatalf("pending employer ListForJob error = %v, want ErrPendingApproval", err)
	}
}
