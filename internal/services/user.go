package services

import (
	"context"
	"fmt"

	"github.com/jobnexus/apiserver/internal/authz"
	"github.com/jobnexus/apiserver/internal/events"
	"github.com/jobnexus/apiserver/internal/store"
	"github.com/jobnexus/apiserver/internal/workflow"
	"github.com/jobnexus/apiserver/types"
)

// UserRepository defines persistence operations for users and profiles.
type UserRepository interface {
	GetByID(ctx context.Context, id int) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	Update(ctx context.Context, user types.User) (types.User, error)
	UpdateStatus(ctx context.Context, id int, status types.AccountStatus) error
	Delete(ctx context.Context, id int) error
	List(ctx context.Context, filter store.UserFilter) ([]types.User, error)
	CountByRoleStatus(ctx context.Context, filter store.UserFilter) (int, error)
	GetCandidateProfile(ctx context.Context, userID int) (types.CandidateProfile, error)
	UpsertCandidateProfile(ctx context.Context, p types.CandidateProfile) error
	GetEmployerProfile(ctx context.Context, userID int) (types.EmployerProfile, error)
	UpsertEmployerProfile(ctx context.Context, p types.EmployerProfile) error
}

// UserService encapsulates account use-cases: registration, sub-admin
// management, and the employer approval workflow.
type UserService struct {
	repo    UserRepository
	emitter events.Emitter
}

func NewUserService(repo UserRepository, emitter events.Emitter) *UserService {
	if emitter == nil {
		emitter = events.Nop{}
	}
	return &UserService{repo: repo, emitter: emitter}
}

func (s *UserService) GetByID(ctx context.Context, id int) (types.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (types.User, error) {
	return s.repo.GetByEmail(ctx, email)
}

// Register creates a candidate or employer account. Employers start out
// pending and must be approved before they can post jobs; everyone else
// is active immediately.
func (s *UserService) Register(ctx context.Context, user types.User) (types.User, error) {
	if user.Role != types.RoleCandidate && user.Role != types.RoleEmployer {
		return types.User{}, fmt.Errorf("%w: role must be candidate or employer", ErrValidation)
	}
	user.Status = types.AccountActive
	if user.Role == types.RoleEmployer {
		user.Status = types.AccountPending
	}
	user.Permissions = nil

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return types.User{}, err
	}
	s.emitter.Emit(ctx, "user.registered", map[string]string{
		"user_id": itoa(created.ID),
		"role":    string(created.Role),
	})
	return created, nil
}

// CreateSubAdmin creates a sub-admin with the given capability grants.
// Super-admin only.
func (s *UserService) CreateSubAdmin(ctx context.Context, actor types.User, user types.User) (types.User, error) {
	if actor.Role != types.RoleSuperAdmin {
		return types.User{}, ErrDenied
	}
	for _, perm := range user.Permissions {
		if !authz.Valid(authz.Capability(perm)) {
			return types.User{}, fmt.Errorf("%w: unknown permission %q", ErrValidation, perm)
		}
	}
	user.Role = types.RoleSubAdmin
	user.Status = types.AccountActive
	user.CreatedBy = &actor.ID
	return s.repo.Create(ctx, user)
}

// UpdateSubAdmin updates a sub-admin's name, permission grants, or
// status. Super-admin only; status changes go through the account
// machine like every other status path.
func (s *UserService) UpdateSubAdmin(ctx context.Context, actor types.User, id int, name string, permissions []string, status types.AccountStatus) (types.User, error) {
	if actor.Role != types.RoleSuperAdmin {
		return types.User{}, ErrDenied
	}
	target, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return types.User{}, err
	}
	if target.Role != types.RoleSubAdmin {
		return types.User{}, store.ErrNotFound
	}
	if name != "" {
		target.Name = name
	}
	if permissions != nil {
		for _, perm := range permissions {
			if !authz.Valid(authz.Capability(perm)) {
				return types.User{}, fmt.Errorf("%w: unknown permission %q", ErrValidation, perm)
			}
		}
		target.Permissions = permissions
	}
	if status != "" && status != target.Status {
		switch status {
		case types.AccountPending, types.AccountActive, types.AccountBlocked:
		default:
			return types.User{}, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
		}
		if err := workflow.Employers.Step(target.Status, status); err != nil {
			return types.User{}, err
		}
		target.Status = status
	}
	return s.repo.Update(ctx, target)
}

// DeleteSubAdmin removes a sub-admin account. Super-admin only; the only
// hard delete of an account in the normal flow.
func (s *UserService) DeleteSubAdmin(ctx context.Context, actor types.User, id int) error {
	if actor.Role != types.RoleSuperAdmin {
		return ErrDenied
	}
	target, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if target.Role != types.RoleSubAdmin {
		return store.ErrNotFound
	}
	return s.repo.Delete(ctx, id)
}

// ListSubAdmins returns every sub-admin account. Super-admin only.
func (s *UserService) ListSubAdmins(ctx context.Context, actor types.User) ([]types.User, error) {
	if actor.Role != types.RoleSuperAdmin {
		return nil, ErrDenied
	}
	return s.repo.List(ctx, store.UserFilter{Role: types.RoleSubAdmin})
}

// ListUsers returns accounts for the admin user view, never including
// the super-admin itself. Requires MANAGE_USERS.
func (s *UserService) ListUsers(ctx context.Context, actor types.User, filter store.UserFilter) ([]types.User, error) {
	if !authz.HasCapability(actor, authz.ManageUsers) {
		return nil, ErrDenied
	}
	filter.ExcludeSuperAdmin = true
	return s.repo.List(ctx, filter)
}

// ListPendingEmployers returns employers awaiting approval. Requires
// APPROVE_EMPLOYERS.
func (s *UserService) ListPendingEmployers(ctx context.Context, actor types.User) ([]types.User, error) {
	if !authz.HasCapability(actor, authz.ApproveEmployers) {
		return nil, ErrDenied
	}
	return s.repo.List(ctx, store.UserFilter{Role: types.RoleEmployer, Status: types.AccountPending})
}

// SetAccountStatus moves an account through the approval machine.
// Approving or rejecting a pending employer requires APPROVE_EMPLOYERS;
// blocking or re-activating any other account requires MANAGE_USERS. The
// super-admin account itself can never be blocked.
func (s *UserService) SetAccountStatus(ctx context.Context, actor types.User, id int, next types.AccountStatus) error {
	target, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if target.Role == types.RoleSuperAdmin {
		return ErrDenied
	}

	capability := authz.ManageUsers
	if target.Role == types.RoleEmployer && target.Status == types.AccountPending {
		capability = authz.ApproveEmployers
	}
	if !authz.HasCapability(actor, capability) {
		return ErrDenied
	}

	if err := workflow.Employers.Step(target.Status, next); err != nil {
		return err
	}
	if err := s.repo.UpdateStatus(ctx, id, next); err != nil {
		return err
	}
	s.emitter.Emit(ctx, "user.status_changed", map[string]string{
		"user_id": itoa(id),
		"status":  string(next),
		"by":      itoa(actor.ID),
	})
	return nil
}

func (s *UserService) GetCandidateProfile(ctx context.Context, userID int) (types.CandidateProfile, error) {
	return s.repo.GetCandidateProfile(ctx, userID)
}

func (s *UserService) UpdateCandidateProfile(ctx context.Context, actor types.User, p types.CandidateProfile) error {
	if !authz.CandidateAction(actor, p.UserID).Allowed() {
		return ErrDenied
	}
	return s.repo.UpsertCandidateProfile(ctx, p)
}

func (s *UserService) GetEmployerProfile(ctx context.Context, userID int) (types.EmployerProfile, error) {
	return s.repo.GetEmployerProfile(ctx, userID)
}

func (s *UserService) UpdateEmployerProfile(ctx context.Context, actor types.User, p types.EmployerProfile) error {
	// Profile edits stay available while the account is pending.
	if !authz.EmployerAction(actor, p.UserID, false).Allowed() {
		return ErrDenied
	}
	return s.repo.UpsertEmployerProfile(ctx, p)
}

func itoa(n int) string {
	return fmt.Sprintf("%d", n)
}
