package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jobnexus/apiserver/types"
	"github.com/lib/pq"
)

// ApplicationRepository handles persistence for job applications.
type ApplicationRepository struct {
	db *sql.DB
}

func NewApplicationRepository(db *sql.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

const applicationColumns = `a.id, a.job_id, a.candidate_id, a.cover_letter, a.status,
		j.title, j.company, c.name, c.email, a.created_at, a.updated_at`

const applicationFrom = `
		FROM applications a
		JOIN jobs j ON j.id = a.job_id
		JOIN users c ON c.id = a.candidate_id`

func scanApplication(row interface{ Scan(...any) error }) (types.Application, error) {
	var app types.Application
	err := row.Scan(
		&app.ID,
		&app.JobID,
		&app.CandidateID,
		&app.CoverLetter,
		&app.Status,
		&app.JobTitle,
		&app.Company,
		&app.CandidateName,
		&app.CandidateEmail,
		&app.CreatedAt,
		&app.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Application{}, ErrNotFound
		}
		return types.Application{}, err
	}
	return app, nil
}

func (r *ApplicationRepository) Get(ctx context.Context, id int) (types.Application, error) {
	const query = `SELECT ` + applicationColumns + applicationFrom + ` WHERE a.id = $1`
	return scanApplication(r.db.QueryRowContext(ctx, query, id))
}

// Create inserts a new application. A second submission for the same
// (candidate, job) pair fails with ErrDuplicate via the unique index;
// concurrent duplicates race inside the database, not here.
func (r *ApplicationRepository) Create(ctx context.Context, app types.Application) (types.Application, error) {
	now := time.Now()
	app.CreatedAt = now
	app.UpdatedAt = now

	const query = `
		INSERT INTO applications (job_id, candidate_id, cover_letter, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		app.JobID,
		app.CandidateID,
		app.CoverLetter,
		app.Status,
		app.CreatedAt,
		app.UpdatedAt,
	).Scan(&app.ID); err != nil {
		return types.Application{}, mapError(err)
	}
	return app, nil
}

func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id int, status types.ApplicationStatus) error {
	const query = `
		UPDATE applications
		SET status = $1, updated_at = $2
		WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, status, time.Now(), id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ApplicationRepository) Delete(ctx context.Context, id int) error {
	const query = `DELETE FROM applications WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ApplicationRepository) ListByCandidate(ctx context.Context, candidateID int) ([]types.Application, error) {
	const query = `SELECT ` + applicationColumns + applicationFrom + `
		WHERE a.candidate_id = $1
		ORDER BY a.created_at DESC`
	return r.list(ctx, query, candidateID)
}

// ListByJob returns a job's applicants with each candidate's profile
// joined in, so the employer can review skills and resume in place.
// Candidates without a profile come back with a nil one.
func (r *ApplicationRepository) ListByJob(ctx context.Context, jobID int) ([]types.Application, error) {
	const query = `SELECT ` + applicationColumns + `,
			cp.user_id, cp.headline, cp.summary, cp.skills, cp.experience,
			cp.education, cp.resume_url, cp.phone, cp.location` + applicationFrom + `
			LEFT JOIN candidate_profiles cp ON cp.user_id = a.candidate_id
			WHERE a.job_id = $1
			ORDER BY a.created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	apps := make([]types.Application, 0)
	for rows.Next() {
		var app types.Application
		var profileID sql.NullInt64
		var headline, summary, experience, education, resumeURL, phone, location sql.NullString
		var skills []string
		err := rows.Scan(
			&app.ID,
			&app.JobID,
			&app.CandidateID,
			&app.CoverLetter,
			&app.Status,
			&app.JobTitle,
			&app.Company,
			&app.CandidateName,
			&app.CandidateEmail,
			&app.CreatedAt,
			&app.UpdatedAt,
			&profileID,
			&headline,
			&summary,
			pq.Array(&skills),
			&experience,
			&education,
			&resumeURL,
			&phone,
			&location,
		)
		if err != nil {
			return nil, err
		}
		if profileID.Valid {
			app.CandidateProfile = &types.CandidateProfile{
				UserID:     int(profileID.Int64),
				Headline:   headline.String,
				Summary:    summary.String,
				Skills:     skills,
				Experience: experience.String,
				Education:  education.String,
				ResumeURL:  resumeURL.String,
				Phone:      phone.String,
				Location:   location.String,
			}
		}
		apps = append(apps, app)
	}
	return apps, rows.Err()
}

func (r *ApplicationRepository) list(ctx context.Context, query string, args ...any) ([]types.Application, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	apps := make([]types.Application, 0)
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}
	return apps, rows.Err()
}

// Count returns the total number of applications, for analytics.
func (r *ApplicationRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM applications`).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}
