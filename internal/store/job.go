package store

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/jobnexus/apiserver/types"
	"github.com/lib/pq"
)

// JobRepository handles persistence for job postings.
type JobRepository struct {
	db *sql.DB
}

func NewJobRepository(db *sql.DB) *JobRepository {
	return &JobRepository{db: db}
}

const jobColumns = `j.id, j.title, j.description, j.company, j.location, j.salary, j.job_type,
		j.experience_level, j.skills, j.status, j.employer_id, u.name, j.approved_by, j.created_at, j.updated_at`

const jobFrom = ` FROM jobs j JOIN users u ON u.id = j.employer_id`

func scanJob(row interface{ Scan(...any) error }) (types.Job, error) {
	var job types.Job
	err := row.Scan(
		&job.ID,
		&job.Title,
		&job.Description,
		&job.Company,
		&job.Location,
		&job.Salary,
		&job.JobType,
		&job.ExperienceLevel,
		pq.Array(&job.Skills),
		&job.Status,
		&job.EmployerID,
		&job.EmployerName,
		&job.ApprovedBy,
		&job.CreatedAt,
		&job.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Job{}, ErrNotFound
		}
		return types.Job{}, err
	}
	return job, nil
}

func (r *JobRepository) Get(ctx context.Context, id int) (types.Job, error) {
	const query = `SELECT ` + jobColumns + jobFrom + ` WHERE j.id = $1`
	return scanJob(r.db.QueryRowContext(ctx, query, id))
}

func (r *JobRepository) Create(ctx context.Context, job types.Job) (types.Job, error) {
	now := time.Now()
	job.CreatedAt = now
	job.UpdatedAt = now
	if job.Skills == nil {
		job.Skills = []string{}
	}

	const query = `
		INSERT INTO jobs (title, description, company, location, salary, job_type, experience_level, skills, status, employer_id, approved_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		job.Title,
		job.Description,
		job.Company,
		job.Location,
		job.Salary,
		job.JobType,
		job.ExperienceLevel,
		pq.Array(job.Skills),
		job.Status,
		job.EmployerID,
		job.ApprovedBy,
		job.CreatedAt,
		job.UpdatedAt,
	).Scan(&job.ID); err != nil {
		return types.Job{}, err
	}
	return job, nil
}

func (r *JobRepository) Update(ctx context.Context, job types.Job) (types.Job, error) {
	job.UpdatedAt = time.Now()
	if job.Skills == nil {
		job.Skills = []string{}
	}

	const query = `
		UPDATE jobs
		SET title = $1,
			description = $2,
			company = $3,
			location = $4,
			salary = $5,
			job_type = $6,
			experience_level = $7,
			skills = $8,
			status = $9,
			approved_by = $10,
			updated_at = $11
		WHERE id = $12`
	result, err := r.db.ExecContext(
		ctx,
		query,
		job.Title,
		job.Description,
		job.Company,
		job.Location,
		job.Salary,
		job.JobType,
		job.ExperienceLevel,
		pq.Array(job.Skills),
		job.Status,
		job.ApprovedBy,
		job.UpdatedAt,
		job.ID,
	)
	if err != nil {
		return types.Job{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Job{}, err
	}
	if affected == 0 {
		return types.Job{}, ErrNotFound
	}
	return job, nil
}

// UpdateStatus records a moderation decision along with the deciding admin.
func (r *JobRepository) UpdateStatus(ctx context.Context, id int, status types.JobStatus, approvedBy *int) error {
	const query = `
		UPDATE jobs
		SET status = $1, approved_by = $2, updated_at = $3
		WHERE id = $4`
	result, err := r.db.ExecContext(ctx, query, status, approvedBy, time.Now(), id)
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

func (r *JobRepository) Delete(ctx context.Context, id int) error {
	const query = `DELETE FROM jobs WHERE id = $1`
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

// JobFilter narrows List results. Zero values mean no filtering.
type JobFilter struct {
	Status     types.JobStatus
	EmployerID int

	// Search matches title, company, and description case-insensitively.
	Search   string
	Location string
	JobType  string

	Offset int
	Limit  int
}

func (r *JobRepository) List(ctx context.Context, filter JobFilter) ([]types.Job, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where += ` AND j.status = $` + strconv.Itoa(len(args))
	}
	if filter.EmployerID != 0 {
		args = append(args, filter.EmployerID)
		where += ` AND j.employer_id = $` + strconv.Itoa(len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := strconv.Itoa(len(args))
		where += ` AND (j.title ILIKE $` + n + ` OR j.company ILIKE $` + n + ` OR j.description ILIKE $` + n + `)`
	}
	if filter.Location != "" {
		args = append(args, "%"+filter.Location+"%")
		where += ` AND j.location ILIKE $` + strconv.Itoa(len(args))
	}
	if filter.JobType != "" {
		args = append(args, filter.JobType)
		where += ` AND j.job_type = $` + strconv.Itoa(len(args))
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(1)`+jobFrom+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + jobColumns + jobFrom + where + ` ORDER BY j.created_at DESC, j.id DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += ` LIMIT $` + strconv.Itoa(len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += ` OFFSET $` + strconv.Itoa(len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	jobs := make([]types.Job, 0, filter.Limit)
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, 0, err
		}
		jobs = append(jobs, job)
	}
	return jobs, total, rows.Err()
}

// CountByStatus returns moderation counts for the analytics endpoint.
func (r *JobRepository) CountByStatus(ctx context.Context, status types.JobStatus) (int, error) {
	query := `SELECT COUNT(1) FROM jobs`
	args := []any{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	var total int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}
