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

// UserRepository handles persistence for users and their profiles.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, email, name, role, status, permissions, password_hash, created_by, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (types.User, error) {
	var user types.User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.Role,
		&user.Status,
		pq.Array(&user.Permissions),
		&user.PasswordHash,
		&user.CreatedBy,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.User{}, ErrNotFound
		}
		return types.User{}, err
	}
	return user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int) (types.User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users
		WHERE id = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (types.User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users
		WHERE email = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, email))
}

func (r *UserRepository) Create(ctx context.Context, user types.User) (types.User, error) {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Permissions == nil {
		user.Permissions = []string{}
	}

	const query = `
		INSERT INTO users (email, name, role, status, permissions, password_hash, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		user.Email,
		user.Name,
		user.Role,
		user.Status,
		pq.Array(user.Permissions),
		user.PasswordHash,
		user.CreatedBy,
		user.CreatedAt,
		user.UpdatedAt,
	).Scan(&user.ID); err != nil {
		return types.User{}, mapError(err)
	}
	return user, nil
}

func (r *UserRepository) Update(ctx context.Context, user types.User) (types.User, error) {
	user.UpdatedAt = time.Now()
	if user.Permissions == nil {
		user.Permissions = []string{}
	}

	const query = `
		UPDATE users
		SET email = $1,
			name = $2,
			role = $3,
			status = $4,
			permissions = $5,
			password_hash = $6,
			updated_at = $7
		WHERE id = $8`
	result, err := r.db.ExecContext(
		ctx,
		query,
		user.Email,
		user.Name,
		user.Role,
		user.Status,
		pq.Array(user.Permissions),
		user.PasswordHash,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		return types.User{}, mapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.User{}, err
	}
	if affected == 0 {
		return types.User{}, ErrNotFound
	}
	return user, nil
}

// UpdateStatus mutates only the account status, recording the acting
// admin when one is given.
func (r *UserRepository) UpdateStatus(ctx context.Context, id int, status types.AccountStatus) error {
	const query = `
		UPDATE users
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

func (r *UserRepository) Delete(ctx context.Context, id int) error {
	const query = `DELETE FROM users WHERE id = $1`
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

// UserFilter narrows List results. Zero values mean no filtering.
type UserFilter struct {
	Role   types.Role
	Status types.AccountStatus

	// ExcludeSuperAdmin hides super-admin accounts from admin listings.
	ExcludeSuperAdmin bool
}

func (r *UserRepository) List(ctx context.Context, filter UserFilter) ([]types.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE 1=1`
	args := []any{}
	if filter.Role != "" {
		args = append(args, filter.Role)
		query += ` AND role = $` + strconv.Itoa(len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += ` AND status = $` + strconv.Itoa(len(args))
	}
	if filter.ExcludeSuperAdmin {
		query += ` AND role <> 'superadmin'`
	}
	query += ` ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]types.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// CountByRoleStatus returns the number of accounts matching the filter,
// used by the analytics endpoint.
func (r *UserRepository) CountByRoleStatus(ctx context.Context, filter UserFilter) (int, error) {
	query := `SELECT COUNT(1) FROM users WHERE 1=1`
	args := []any{}
	if filter.Role != "" {
		args = append(args, filter.Role)
		query += ` AND role = $` + strconv.Itoa(len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += ` AND status = $` + strconv.Itoa(len(args))
	}
	if filter.ExcludeSuperAdmin {
		query += ` AND role <> 'superadmin'`
	}
	var total int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *UserRepository) GetCandidateProfile(ctx context.Context, userID int) (types.CandidateProfile, error) {
	const query = `
		SELECT user_id, headline, summary, skills, experience, education, resume_url, phone, location
		FROM candidate_profiles
		WHERE user_id = $1`
	var p types.CandidateProfile
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&p.UserID,
		&p.Headline,
		&p.Summary,
		pq.Array(&p.Skills),
		&p.Experience,
		&p.Education,
		&p.ResumeURL,
		&p.Phone,
		&p.Location,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.CandidateProfile{}, ErrNotFound
		}
		return types.CandidateProfile{}, err
	}
	return p, nil
}

func (r *UserRepository) UpsertCandidateProfile(ctx context.Context, p types.CandidateProfile) error {
	if p.Skills == nil {
		p.Skills = []string{}
	}
	const query = `
		INSERT INTO candidate_profiles (user_id, headline, summary, skills, experience, education, resume_url, phone, location)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (user_id) DO UPDATE
		SET headline = EXCLUDED.headline,
			summary = EXCLUDED.summary,
			skills = EXCLUDED.skills,
			experience = EXCLUDED.experience,
			education = EXCLUDED.education,
			resume_url = EXCLUDED.resume_url,
			phone = EXCLUDED.phone,
			location = EXCLUDED.location`
	_, err := r.db.ExecContext(ctx, query,
		p.UserID, p.Headline, p.Summary, pq.Array(p.Skills),
		p.Experience, p.Education, p.ResumeURL, p.Phone, p.Location)
	return err
}

func (r *UserRepository) GetEmployerProfile(ctx context.Context, userID int) (types.EmployerProfile, error) {
	const query = `
		SELECT user_id, company_name, company_description, company_website, company_location, company_size, company_logo
		FROM employer_profiles
		WHERE user_id = $1`
	var p types.EmployerProfile
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&p.UserID,
		&p.CompanyName,
		&p.Description,
		&p.Website,
		&p.Location,
		&p.Size,
		&p.LogoURL,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.EmployerProfile{}, ErrNotFound
		}
		return types.EmployerProfile{}, err
	}
	return p, nil
}

func (r *UserRepository) UpsertEmployerProfile(ctx context.Context, p types.EmployerProfile) error {
	const query = `
		INSERT INTO employer_profiles (user_id, company_name, company_description, company_website, company_location, company_size, company_logo)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id) DO UPDATE
		SET company_name = EXCLUDED.company_name,
			company_description = EXCLUDED.company_description,
			company_website = EXCLUDED.company_website,
			company_location = EXCLUDED.company_location,
			company_size = EXCLUDED.company_size,
			company_logo = EXCLUDED.company_logo`
	_, err := r.db.ExecContext(ctx, query,
		p.UserID, p.CompanyName, p.Description, p.Website, p.Location, p.Size, p.LogoURL)
	return err
}
