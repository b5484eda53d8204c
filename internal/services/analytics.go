package services

import (
	"context"

	"github.com/jobnexus/apiserver/internal/authz"
	"github.com/jobnexus/apiserver/internal/store"
	"github.com/jobnexus/apiserver/types"
)

// Analytics is the admin dashboard counters payload.
type Analytics struct {
	Users struct {
		Total            int `json:"total"`
		Candidates       int `json:"candidates"`
		Employers        int `json:"employers"`
		ActiveEmployers  int `json:"active_employers"`
		PendingEmployers int `json:"pending_employers"`
		SubAdmins        int `json:"subadmins"`
	} `json:"users"`
	Jobs struct {
		Total    int `json:"total"`
		Pending  int `json:"pending"`
		Approved int `json:"approved"`
		Rejected int `json:"rejected"`
	} `json:"jobs"`
	Applications struct {
		Total int `json:"total"`
	} `json:"applications"`
}

// AnalyticsService aggregates counters across the directories.
type AnalyticsService struct {
	users        UserRepository
	jobs         JobRepository
	applications ApplicationRepository
}

func NewAnalyticsService(users UserRepository, jobs JobRepository, applications ApplicationRepository) *AnalyticsService {
	return &AnalyticsService{users: users, jobs: jobs, applications: applications}
}

// Snapshot returns dashboard counters. Requires VIEW_REPORTS.
func (s *AnalyticsService) Snapshot(ctx context.Context, actor types.User) (Analytics, error) {
	if !authz.HasCapability(actor, authz.ViewReports) {
		return Analytics{}, ErrDenied
	}

	var out Analytics
	counts := []struct {
		dst    *int
		filter store.UserFilter
	}{
		{&out.Users.Total, store.UserFilter{ExcludeSuperAdmin: true}},
		{&out.Users.Candidates, store.UserFilter{Role: types.RoleCandidate}},
		{&out.Users.Employers, store.UserFilter{Role: types.RoleEmployer}},
		{&out.Users.ActiveEmployers, store.UserFilter{Role: types.RoleEmployer, Status: types.AccountActive}},
		{&out.Users.PendingEmployers, store.UserFilter{Role: types.RoleEmployer, Status: types.AccountPending}},
		{&out.Users.SubAdmins, store.UserFilter{Role: types.RoleSubAdmin}},
	}
	for _, c := range counts {
		n, err := s.users.CountByRoleStatus(ctx, c.filter)
		if err != nil {
			return Analytics{}, err
		}
		*c.dst = n
	}

	jobCounts := []struct {
		dst    *int
		status types.JobStatus
	}{
		{&out.Jobs.Total, ""},
		{&out.Jobs.Pending, types.JobPending},
		{&out.Jobs.Approved, types.JobApproved},
		{&out.Jobs.Rejected, types.JobRejected},
	}
	for _, c := range jobCounts {
		n, err := s.jobs.CountByStatus(ctx, c.status)
		if err != nil {
			return Analytics{}, err
		}
		*c.dst = n
	}

	total, err := s.applications.Count(ctx)
	if err != nil {
		return Analytics{}, err
	}
	out.Applications.Total = total
	return out, nil
}
