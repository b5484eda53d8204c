// Package workflow holds the status state machines for job postings,
// employer accounts, and blog posts. Each machine is a fixed transition
// table; a transition not in the table is rejected with no state change.
package workflow

import (
	"fmt"

	"github.com/jobnexus/apiserver/types"
)

// InvalidTransitionError reports a transition request outside the allowed
// set. It carries the current state so callers can reconcile.
type InvalidTransitionError struct {
	Entity string
	From   string
	To     string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid %s transition: %s -> %s", e.Entity, e.From, e.To)
}

// Machine is an enumerated set of allowed transitions for one entity
// family. The zero value rejects everything.
type Machine[S ~string] struct {
	entity      string
	transitions map[S][]S
}

// NewMachine constructs a machine for the named entity from its
// transition table.
func NewMachine[S ~string](entity string, transitions map[S][]S) Machine[S] {
	return Machine[S]{entity: entity, transitions: transitions}
}

// Can reports whether from -> to is in the allowed set.
func (m Machine[S]) Can(from, to S) bool {
	for _, next := range m.transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Step validates from -> to, returning an InvalidTransitionError when the
// transition is not allowed. It never mutates anything; persisting the new
// state is the caller's job, and only after Step succeeds.
func (m Machine[S]) Step(from, to S) error {
	if !m.Can(from, to) {
		return &InvalidTransitionError{Entity: m.entity, From: string(from), To: string(to)}
	}
	return nil
}

// Jobs is the moderation machine for job postings. Approved and rejected
// postings may be re-reviewed in either direction.
var Jobs = NewMachine("job", map[types.JobStatus][]types.JobStatus{
	types.JobPending:  {types.JobApproved, types.JobRejected},
	types.JobApproved: {types.JobRejected},
	types.JobRejected: {types.JobApproved},
})

// Employers is the approval machine for employer accounts. An authorized
// admin may always toggle between active and blocked.
var Employers = NewMachine("employer", map[types.AccountStatus][]types.AccountStatus{
	types.AccountPending: {types.AccountActive, types.AccountBlocked},
	types.AccountActive:  {types.AccountBlocked},
	types.AccountBlocked: {types.AccountActive},
})

// BlogPosts is the editorial machine for blog posts. Direct draft ->
// published is allowed for any capability holder; publishing out of
// pending_review is additionally restricted to the super-admin, which the
// blog service enforces on top of this table.
var BlogPosts = NewMachine("blog post", map[types.PostStatus][]types.PostStatus{
	types.PostDraft:         {types.PostPendingReview, types.PostPublished},
	types.PostPendingReview: {types.PostPublished, types.PostDraft},
	types.PostPublished:     {types.PostDraft},
})
