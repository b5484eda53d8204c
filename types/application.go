package types

import "time"

// ApplicationStatus is the review state of a candidate's application.
type ApplicationStatus string

const (
	// ApplicationPending is the initial state. The candidate may withdraw
	// only while the application is pending.
	ApplicationPending ApplicationStatus = "pending"

	ApplicationReviewed    ApplicationStatus = "reviewed"
	ApplicationShortlisted ApplicationStatus = "shortlisted"
	ApplicationRejected    ApplicationStatus = "rejected"
	ApplicationHired       ApplicationStatus = "hired"
)

// ReviewStatuses are the states an employer may move an application into.
// No ordering is enforced between them; hiring pipelines are non-linear.
var ReviewStatuses = []ApplicationStatus{
	ApplicationReviewed,
	ApplicationShortlisted,
	ApplicationRejected,
	ApplicationHired,
}

// Application records a candidate applying to a job. At most one
// application exists per (candidate, job) pair, enforced by a unique
// index at the storage layer.
type Application struct {
	// ID is the unique identifier of the application.
	ID int `json:"id" db:"id"`

	// JobID is the ID of the job applied to.
	JobID int `json:"job_id" db:"job_id"`

	// CandidateID is the ID of the applying candidate account.
	CandidateID int `json:"candidate_id" db:"candidate_id"`

	// CoverLetter is optional free-form text supplied by the candidate.
	CoverLetter string `json:"cover_letter,omitempty" db:"cover_letter"`

	// Status is the review state, mutated only by the employer owning the
	// referenced job.
	Status ApplicationStatus `json:"status" db:"status"`

	// JobTitle and Company are joined from the job for candidate-facing
	// listings. Not stored columns.
	JobTitle string `json:"job_title,omitempty" db:"-"`
	Company  string `json:"company,omitempty" db:"-"`

	// CandidateName and CandidateEmail are joined from the candidate for
	// employer-facing listings. Not stored columns.
	CandidateName  string `json:"candidate_name,omitempty" db:"-"`
	CandidateEmail string `json:"candidate_email,omitempty" db:"-"`

	// CandidateProfile is joined into employer-facing applicant listings
	// so skills and resume are reviewable in place. Nil when the candidate
	// has not filled one in.
	CandidateProfile *CandidateProfile `json:"candidate_profile,omitempty" db:"-"`

	// CreatedAt is the timestamp at which the application was submitted.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent status change.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
