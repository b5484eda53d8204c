package types

import "time"

// Role classifies an account within the system.
type Role string

const (
	RoleCandidate  Role = "candidate"
	RoleEmployer   Role = "employer"
	RoleSubAdmin   Role = "subadmin"
	RoleSuperAdmin Role = "superadmin"
)

// AccountStatus is the lifecycle state of a user account.
type AccountStatus string

const (
	// AccountPending is the natural post-registration state of an employer
	// account awaiting admin approval. Candidate and admin accounts never
	// hold this state.
	AccountPending AccountStatus = "pending"

	AccountActive  AccountStatus = "active"
	AccountBlocked AccountStatus = "blocked"
)

// User represents an account in the system.
// It contains identity, role, permission, and audit metadata.
type User struct {
	// ID is the unique identifier of the user.
	ID int `json:"id" db:"id"`

	// Email is the user's unique email address, used as the login name.
	Email string `json:"email" db:"email"`

	// Name is the user's display or full name.
	Name string `json:"name" db:"name"`

	// Role indicates the user's authorization level within the system.
	Role Role `json:"role" db:"role"`

	// Status is the account lifecycle state. A blocked account is denied
	// every action; a pending employer may not post jobs or review
	// applicants until approved.
	Status AccountStatus `json:"status" db:"status"`

	// Permissions is the set of capability tags granted to the account.
	// Only meaningful for sub-admin accounts.
	Permissions []string `json:"permissions" db:"permissions"`

	// PasswordHash stores the hashed representation of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// CreatedBy is the ID of the admin who created this account, if any.
	// Set for sub-admin accounts; nil for self-registered users.
	CreatedBy *int `json:"created_by,omitempty" db:"created_by"`

	// CreatedAt is the timestamp when the user account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the user account.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// CandidateProfile is the optional profile sub-document of a candidate account.
type CandidateProfile struct {
	UserID     int      `json:"user_id" db:"user_id"`
	Headline   string   `json:"headline" db:"headline"`
	Summary    string   `json:"summary" db:"summary"`
	Skills     []string `json:"skills" db:"skills"`
	Experience string   `json:"experience" db:"experience"`
	Education  string   `json:"education" db:"education"`
	ResumeURL  string   `json:"resume_url" db:"resume_url"`
	Phone      string   `json:"phone" db:"phone"`
	Location   string   `json:"location" db:"location"`
}

// EmployerProfile is the optional company profile sub-document of an
// employer account.
type EmployerProfile struct {
	UserID      int    `json:"user_id" db:"user_id"`
	CompanyName string `json:"company_name" db:"company_name"`
	Description string `json:"company_description" db:"company_description"`
	Website     string `json:"company_website" db:"company_website"`
	Location    string `json:"company_location" db:"company_location"`
	Size        string `json:"company_size" db:"company_size"`
	LogoURL     string `json:"company_logo" db:"company_logo"`
}
