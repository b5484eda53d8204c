// Package authz resolves whether a caller may perform an action, based on
// role, account status, and explicit permission grants. Decisions are pure
// values; translating a denial into an HTTP response is the caller's job.
package authz

import (
	"slices"

	"github.com/jobnexus/apiserver/types"
)

// Capability is a named permission grantable to a sub-admin account.
type Capability string

const (
	ManageJobs       Capability = "MANAGE_JOBS"
	ManageUsers      Capability = "MANAGE_USERS"
	ApproveEmployers Capability = "APPROVE_EMPLOYERS"
	ViewReports      Capability = "VIEW_REPORTS"
	ManageBlog       Capability = "MANAGE_BLOG"
)

// Capabilities is the complete set of grantable capability tags.
var Capabilities = []Capability{
	ManageJobs,
	ManageUsers,
	ApproveEmployers,
	ViewReports,
	ManageBlog,
}

// Valid reports whether c is a known capability tag.
func Valid(c Capability) bool {
	return slices.Contains(Capabilities, c)
}

// Decision is the outcome of an authorization check.
type Decision int

const (
	// Allow grants the action.
	Allow Decision = iota

	// Deny refuses the action outright.
	Deny

	// DenyPending refuses the action because the employer account is still
	// awaiting approval; the UI shows a pending gate view instead of a
	// generic access-denied response.
	DenyPending
)

// Allowed is shorthand for d == Allow.
func (d Decision) Allowed() bool { return d == Allow }

// HasCapability checks an explicit grant on the account's permission set.
// Super-admins hold every capability implicitly; sub-admins hold exactly
// what was granted, with no implicit access even to read-only views.
func HasCapability(u types.User, c Capability) bool {
	if u.Status == types.AccountBlocked {
		return false
	}
	if u.Role == types.RoleSuperAdmin {
		return true
	}
	if u.Role != types.RoleSubAdmin {
		return false
	}
	return slices.Contains(u.Permissions, string(c))
}

// AdminAction decides whether the caller may perform an admin action
// gated by the given capability.
func AdminAction(caller types.User, c Capability) Decision {
	if HasCapability(caller, c) {
		return Allow
	}
	return Deny
}

// EmployerAction decides whether the caller may act on an
// employer-scoped resource owned by ownerID. Pending employers are denied
// job-creation and applicant-review actions; restricted marks those.
func EmployerAction(caller types.User, ownerID int, restricted bool) Decision {
	if caller.Status == types.AccountBlocked {
		return Deny
	}
	if caller.Role == types.RoleSuperAdmin {
		return Allow
	}
	if caller.Role != types.RoleEmployer || caller.ID != ownerID {
		return Deny
	}
	if restricted && caller.Status == types.AccountPending {
		return DenyPending
	}
	return Allow
}

// CandidateAction decides whether the caller may act on a
// candidate-scoped resource owned by ownerID.
func CandidateAction(caller types.User, ownerID int) Decision {
	if caller.Status == types.AccountBlocked {
		return Deny
	}
	if caller.Role == types.RoleSuperAdmin {
		return Allow
	}
	if caller.Role != types.RoleCandidate || caller.ID != ownerID {
		return Deny
	}
	return Allow
}

// ActionsFor returns the admin action tags available to an account, as
// data for navigation construction rather than role branching.
func ActionsFor(u types.User) []Capability {
	if u.Status == types.AccountBlocked {
		return nil
	}
	switch u.Role {
	case types.RoleSuperAdmin:
		return slices.Clone(Capabilities)
	case types.RoleSubAdmin:
		granted := make([]Capability, 0, len(u.Permissions))
		for _, c := range Capabilities {
			if slices.Contains(u.Permissions, string(c)) {
				granted = append(granted, c)
			}
		}
		return granted
	default:
		return nil
	}
}
