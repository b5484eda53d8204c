package types

import "time"

// JobStatus is the moderation state of a job posting.
type JobStatus string

const (
	// JobPending is the initial state of every posting. Pending jobs are
	// invisible to public search and cannot accept applications.
	JobPending JobStatus = "pending"

	// JobApproved postings are publicly listed and open for applications.
	JobApproved JobStatus = "approved"

	// JobRejected postings stay visible to their owner but never to the
	// public. A rejected job may be re-approved on re-review.
	JobRejected JobStatus = "rejected"
)

// Job represents a job posting created by an employer.
type Job struct {
	// ID is the unique identifier of the job posting.
	ID int `json:"id" db:"id"`

	// Title is the human-readable name of the position.
	Title string `json:"title" db:"title"`

	// Description contains the full posting text.
	Description string `json:"description" db:"description"`

	// Company is the display name of the hiring company.
	Company string `json:"company" db:"company"`

	// Location is the free-form location of the position.
	Location string `json:"location" db:"location"`

	// Salary is free-form compensation text, e.g. "$90k-$120k".
	Salary string `json:"salary,omitempty" db:"salary"`

	// JobType is the employment type, e.g. "full-time" or "contract".
	JobType string `json:"job_type" db:"job_type"`

	// ExperienceLevel is the expected seniority, e.g. "senior".
	ExperienceLevel string `json:"experience_level,omitempty" db:"experience_level"`

	// Skills are free-form labels used for filtering and matching.
	Skills []string `json:"skills" db:"skills"`

	// Status is the moderation state. Only an admin or a sub-admin holding
	// the job-management capability may change it.
	Status JobStatus `json:"status" db:"status"`

	// EmployerID is the ID of the owning employer account.
	EmployerID int `json:"employer_id" db:"employer_id"`

	// EmployerName is the owning employer's display name, joined in for
	// list responses. Not a stored column.
	EmployerName string `json:"employer_name,omitempty" db:"-"`

	// ApprovedBy is the ID of the admin who approved the posting, if any.
	ApprovedBy *int `json:"approved_by,omitempty" db:"approved_by"`

	// CreatedAt is the timestamp at which the posting was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the posting.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
