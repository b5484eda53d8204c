package services

import (
	"context"
	"sort"
	"time"

	"github.com/jobnexus/apiserver/internal/store"
	"github.com/jobnexus/apiserver/types"
)

// In-memory repositories backing the service tests. They mirror the
// store's observable behavior: sentinel errors, duplicate detection, and
// filter semantics.

type fakeUserRepo struct {
	users             map[int]types.User
	candidateProfiles map[int]types.CandidateProfile
	employerProfiles  map[int]types.EmployerProfile
	nextID            int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:             map[int]types.User{},
		candidateProfiles: map[int]types.CandidateProfile{},
		employerProfiles:  map[int]types.EmployerProfile{},
		nextID:            1,
	}
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int) (types.User, error) {
	user, ok := r.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (types.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *fakeUserRepo) Create(_ context.Context, user types.User) (types.User, error) {
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return types.User{}, store.ErrDuplicate
		}
	}
	user.ID = r.nextID
	r.nextID++
	r.users[user.ID] = user
	return user, nil
}

func (r *fakeUserRepo) Update(_ context.Context, user types.User) (types.User, error) {
	if _, ok := r.users[user.ID]; !ok {
		return types.User{}, store.ErrNotFound
	}
	r.users[user.ID] = user
	return user, nil
}

func (r *fakeUserRepo) UpdateStatus(_ context.Context, id int, status types.AccountStatus) error {
	user, ok := r.users[id]
	if !ok {
		return store.ErrNotFound
	}
	user.Status = status
	r.users[id] = user
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id int) error {
	if _, ok := r.users[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) matches(user types.User, filter store.UserFilter) bool {
	if filter.Role != "" && user.Role != filter.Role {
		return false
	}
	if filter.Status != "" && user.Status != filter.Status {
		return false
	}
	if filter.ExcludeSuperAdmin && user.Role == types.RoleSuperAdmin {
		return false
	}
	return true
}

func (r *fakeUserRepo) List(_ context.Context, filter store.UserFilter) ([]types.User, error) {
	users := make([]types.User, 0)
	for _, user := range r.users {
		if r.matches(user, filter) {
			users = append(users, user)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (r *fakeUserRepo) CountByRoleStatus(ctx context.Context, filter store.UserFilter) (int, error) {
	users, err := r.List(ctx, filter)
	return len(users), err
}

func (r *fakeUserRepo) GetCandidateProfile(_ context.Context, userID int) (types.CandidateProfile, error) {
	p, ok := r.candidateProfiles[userID]
	if !ok {
		return types.CandidateProfile{}, store.ErrNotFound
	}
	return p, nil
}

func (r *fakeUserRepo) UpsertCandidateProfile(_ context.Context, p types.CandidateProfile) error {
	r.candidateProfiles[p.UserID] = p
	return nil
}

func (r *fakeUserRepo) GetEmployerProfile(_ context.Context, userID int) (types.EmployerProfile, error) {
	p, ok := r.employerProfiles[userID]
	if !ok {
		return types.EmployerProfile{}, store.ErrNotFound
	}
	return p, nil
}

func (r *fakeUserRepo) UpsertEmployerProfile(_ context.Context, p types.EmployerProfile) error {
	r.employerProfiles[p.UserID] = p
	return nil
}

type fakeJobRepo struct {
	jobs   map[int]types.Job
	nextID int
}

func newFakeJobRepo() *fakeJobRepo {
	return &fakeJobRepo{jobs: map[int]types.Job{}, nextID: 1}
}

func (r *fakeJobRepo) Get(_ context.Context, id int) (types.Job, error) {
	job, ok := r.jobs[id]
	if !ok {
		return types.Job{}, store.ErrNotFound
	}
	return job, nil
}

func (r *fakeJobRepo) Create(_ context.Context, job types.Job) (types.Job, error) {
	job.ID = r.nextID
	r.nextID++
	r.jobs[job.ID] = job
	return job, nil
}

func (r *fakeJobRepo) Update(_ context.Context, job types.Job) (types.Job, error) {
	if _, ok := r.jobs[job.ID]; !ok {
		return types.Job{}, store.ErrNotFound
	}
	r.jobs[job.ID] = job
	return job, nil
}

func (r *fakeJobRepo) UpdateStatus(_ context.Context, id int, status types.JobStatus, approvedBy *int) error {
	job, ok := r.jobs[id]
	if !ok {
		return store.ErrNotFound
	}
	job.Status = status
	job.ApprovedBy = approvedBy
	r.jobs[id] = job
	return nil
}

func (r *fakeJobRepo) Delete(_ context.Context, id int) error {
	if _, ok := r.jobs[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.jobs, id)
	return nil
}

func (r *fakeJobRepo) List(_ context.Context, filter store.JobFilter) ([]types.Job, int, error) {
	jobs := make([]types.Job, 0)
	for _, job := range r.jobs {
		if filter.Status != "" && job.Status != filter.Status {
			continue
		}
		if filter.EmployerID != 0 && job.EmployerID != filter.EmployerID {
			continue
		}
		jobs = append(jobs, job)
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].ID < jobs[j].ID })
	return jobs, len(jobs), nil
}

func (r *fakeJobRepo) CountByStatus(_ context.Context, status types.JobStatus) (int, error) {
	count := 0
	for _, job := range r.jobs {
		if status == "" || job.Status == status {
			count++
		}
	}
	return count, nil
}

type fakeApplicationRepo struct {
	apps     map[int]types.Application
	profiles map[int]types.CandidateProfile
	nextID   int
}

func newFakeApplicationRepo() *fakeApplicationRepo {
	return &fakeApplicationRepo{
		apps:     map[int]types.Application{},
		profiles: map[int]types.CandidateProfile{},
		nextID:   1,
	}
}

func (r *fakeApplicationRepo) Get(_ context.Context, id int) (types.Application, error) {
	app, ok := r.apps[id]
	if !ok {
		return types.Application{}, store.ErrNotFound
	}
	return app, nil
}

func (r *fakeApplicationRepo) Create(_ context.Context, app types.Application) (types.Application, error) {
	for _, existing := range r.apps {
		if existing.CandidateID == app.CandidateID && existing.JobID == app.JobID {
			return types.Application{}, store.ErrDuplicate
		}
	}
	app.ID = r.nextID
	r.nextID++
	r.apps[app.ID] = app
	return app, nil
}

func (r *fakeApplicationRepo) UpdateStatus(_ context.Context, id int, status types.ApplicationStatus) error {
	app, ok := r.apps[id]
	if !ok {
		return store.ErrNotFound
	}
	app.Status = status
	r.apps[id] = app
	return nil
}

func (r *fakeApplicationRepo) Delete(_ context.Context, id int) error {
	if _, ok := r.apps[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.apps, id)
	return nil
}

func (r *fakeApplicationRepo) ListByCandidate(_ context.Context, candidateID int) ([]types.Application, error) {
	apps := make([]types.Application, 0)
	for _, app := range r.apps {
		if app.CandidateID == candidateID {
			apps = append(apps, app)
		}
	}
	sort.Slice(apps, func(i, j int) bool { return apps[i].ID < apps[j].ID })
	return apps, nil
}

// ListByJob attaches each applicant's candidate profile, mirroring the
// store's left join.
func (r *fakeApplicationRepo) ListByJob(_ context.Context, jobID int) ([]types.Application, error) {
	apps := make([]types.Application, 0)
	for _, app := range r.apps {
		if app.JobID != jobID {
			continue
		}
		if p, ok := r.profiles[app.CandidateID]; ok {
			profile := p
			app.CandidateProfile = &profile
		}
		apps = append(apps, app)
	}
	sort.Slice(apps, func(i, j int) bool { return apps[i].ID < apps[j].ID })
	return apps, nil
}

func (r *fakeApplicationRepo) Count(_ context.Context) (int, error) {
	return len(r.apps), nil
}

type fakeBlogRepo struct {
	posts      map[int]types.BlogPost
	categories map[int]types.Category
	tags       map[int]types.Tag
	comments   map[int]types.Comment
	nextID     int
}

func newFakeBlogRepo() *fakeBlogRepo {
	return &fakeBlogRepo{
		posts:      map[int]types.BlogPost{},
		categories: map[int]types.Category{},
		tags:       map[int]types.Tag{},
		comments:   map[int]types.Comment{},
		nextID:     1,
	}
}

func (r *fakeBlogRepo) id() int {
	id := r.nextID
	r.nextID++
	return id
}

func (r *fakeBlogRepo) GetPost(_ context.Context, id int) (types.BlogPost, error) {
	post, ok := r.posts[id]
	if !ok {
		return types.BlogPost{}, store.ErrNotFound
	}
	return post, nil
}

func (r *fakeBlogRepo) GetPostBySlug(_ context.Context, slug string) (types.BlogPost, error) {
	for _, post := range r.posts {
		if post.Slug == slug {
			return post, nil
		}
	}
	return types.BlogPost{}, store.ErrNotFound
}

func (r *fakeBlogRepo) CreatePost(_ context.Context, post types.BlogPost) (types.BlogPost, error) {
	for _, existing := range r.posts {
		if existing.Slug == post.Slug {
			return types.BlogPost{}, store.ErrDuplicate
		}
	}
	post.ID = r.id()
	r.posts[post.ID] = post
	return post, nil
}

func (r *fakeBlogRepo) UpdatePost(_ context.Context, post types.BlogPost) (types.BlogPost, error) {
	if _, ok := r.posts[post.ID]; !ok {
		return types.BlogPost{}, store.ErrNotFound
	}
	r.posts[post.ID] = post
	return post, nil
}

func (r *fakeBlogRepo) UpdatePostStatus(_ context.Context, id int, status types.PostStatus, publishedAt *time.Time) error {
	post, ok := r.posts[id]
	if !ok {
		return store.ErrNotFound
	}
	post.Status = status
	post.PublishedAt = publishedAt
	r.posts[id] = post
	return nil
}

func (r *fakeBlogRepo) DeletePost(_ context.Context, id int) error {
	if _, ok := r.posts[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.posts, id)
	return nil
}

func (r *fakeBlogRepo) ListPosts(_ context.Context, filter store.PostFilter) ([]types.BlogPost, int, error) {
	posts := make([]types.BlogPost, 0)
	for _, post := range r.posts {
		if filter.Status != "" && post.Status != filter.Status {
			continue
		}
		if filter.VisibleAt != nil && post.PublishedAt != nil && post.PublishedAt.After(*filter.VisibleAt) {
			continue
		}
		posts = append(posts, post)
	}
	sort.Slice(posts, func(i, j int) bool { return posts[i].ID < posts[j].ID })
	total := len(posts)
	if filter.Limit > 0 && len(posts) > filter.Limit {
		posts = posts[:filter.Limit]
	}
	return posts, total, nil
}

func (r *fakeBlogRepo) ListCategories(_ context.Context) ([]types.Category, error) {
	categories := make([]types.Category, 0, len(r.categories))
	for _, c := range r.categories {
		categories = append(categories, c)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].ID < categories[j].ID })
	return categories, nil
}

func (r *fakeBlogRepo) CreateCategory(_ context.Context, c types.Category) (types.Category, error) {
	for _, existing := range r.categories {
		if existing.Slug == c.Slug {
			return types.Category{}, store.ErrDuplicate
		}
	}
	c.ID = r.id()
	r.categories[c.ID] = c
	return c, nil
}

func (r *fakeBlogRepo) DeleteCategory(_ context.Context, id int) error {
	if _, ok := r.categories[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.categories, id)
	return nil
}

func (r *fakeBlogRepo) ListTags(_ context.Context) ([]types.Tag, error) {
	tags := make([]types.Tag, 0, len(r.tags))
	for _, t := range r.tags {
		tags = append(tags, t)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].ID < tags[j].ID })
	return tags, nil
}

func (r *fakeBlogRepo) CreateTag(_ context.Context, t types.Tag) (types.Tag, error) {
	for _, existing := range r.tags {
		if existing.Slug == t.Slug {
			return types.Tag{}, store.ErrDuplicate
		}
	}
	t.ID = r.id()
	r.tags[t.ID] = t
	return t, nil
}

func (r *fakeBlogRepo) GetTagsBySlugs(_ context.Context, slugs []string) ([]types.Tag, error) {
	tags := make([]types.Tag, 0, len(slugs))
	for _, slug := range slugs {
		found := false
		for _, t := range r.tags {
			if t.Slug == slug {
				tags = append(tags, t)
				found = true
				break
			}
		}
		if !found {
			return nil, store.ErrNotFound
		}
	}
	return tags, nil
}

func (r *fakeBlogRepo) DeleteTag(_ context.Context, id int) error {
	if _, ok := r.tags[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.tags, id)
	return nil
}

func (r *fakeBlogRepo) CreateComment(_ context.Context, c types.Comment) (types.Comment, error) {
	c.ID = r.id()
	r.comments[c.ID] = c
	return c, nil
}

func (r *fakeBlogRepo) ListComments(_ context.Context, postID int, approvedOnly bool) ([]types.Comment, error) {
	comments := make([]types.Comment, 0)
	for _, c := range r.comments {
		if c.PostID != postID {
			continue
		}
		if approvedOnly && !c.Approved {
			continue
		}
		comments = append(comments, c)
	}
	sort.Slice(comments, func(i, j int) bool { return comments[i].ID < comments[j].ID })
	return comments, nil
}

func (r *fakeBlogRepo) ApproveComment(_ context.Context, id int) error {
	c, ok := r.comments[id]
	if !ok {
		return store.ErrNotFound
	}
	c.Approved = true
	r.comments[id] = c
	return nil
}

func (r *fakeBlogRepo) DeleteComment(_ context.Context, id int) error {
	if _, ok := r.comments[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.comments, id)
	return nil
}

// Fixture helpers shared across service tests.

func superAdmin() types.User {
	return types.User{ID: 1, Role: types.RoleSuperAdmin, Status: types.AccountActive}
}

func activeEmployer(id int) types.User {
	return types.User{ID: id, Role: types.RoleEmployer, Status: types.AccountActive}
}

func pendingEmployer(id int) types.User {
	return types.User{ID: id, Role: types.RoleEmployer, Status: types.AccountPending}
}

func candidate(id int) types.User {
	return types.User{ID: id, Role: types.RoleCandidate, Status: types.AccountActive}
}

func subAdmin(id int, perms ...string) types.User {
	return types.User{ID: id, Role: types.RoleSubAdmin, Status: types.AccountActive, Permissions: perms}
}
