package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/nadscarim/task-management/internal/core/domain"
)

// ---------------------------------------------------------------------------
// In-memory repositories shared by the service tests.
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	byID      map[string]*domain.User
	createErr error
	findErr   error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byID: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) error {
	if r.createErr != nil {
		return r.createErr
	}
	for _, u := range r.byID {
		if u.Email == user.Email {
			return domain.ErrUserExists
		}
	}
	r.byID[user.ID] = cloneUser(user)
	return nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, u := range r.byID {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

type stubTokenRepo struct {
	users    *stubUserRepo
	rows     []*domain.RefreshToken
	storeErr error
	trimErr  error
}

func newStubTokenRepo(users *stubUserRepo) *stubTokenRepo {
	return &stubTokenRepo{users: users}
}

func (r *stubTokenRepo) Store(_ context.Context, t *domain.RefreshToken) error {
	if r.storeErr != nil {
		return r.storeErr
	}
	c := *t
	r.rows = append(r.rows, &c)
	return nil
}

func (r *stubTokenRepo) FindActive(_ context.Context, token, userID string, now time.Time) (*domain.RefreshToken, *domain.User, error) {
	for _, row := range r.rows {
		if row.Token != token || row.UserID != userID || row.Expired(now) {
			continue
		}
		u, ok := r.users.byID[row.UserID]
		if !ok {
			return nil, nil, domain.ErrRefreshTokenInvalid
		}
		c := *row
		return &c, cloneUser(u), nil
	}
	return nil, nil, domain.ErrRefreshTokenInvalid
}

func (r *stubTokenRepo) DeleteByToken(_ context.Context, token string) (int64, error) {
	return r.deleteWhere(func(t *domain.RefreshToken) bool { return t.Token == token }), nil
}

func (r *stubTokenRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	return r.deleteWhere(func(t *domain.RefreshToken) bool { return t.ExpiresAt.Before(now) }), nil
}

func (r *stubTokenRepo) TrimUser(_ context.Context, userID string, keep int) (int64, error) {
	if r.trimErr != nil {
		return 0, r.trimErr
	}
	var mine []*domain.RefreshToken
	for _, t := range r.rows {
		if t.UserID == userID {
			mine = append(mine, t)
		}
	}
	if len(mine) <= keep {
		return 0, nil
	}
	sort.SliceStable(mine, func(i, j int) bool { return mine[i].CreatedAt.After(mine[j].CreatedAt) })
	drop := make(map[*domain.RefreshToken]bool)
	for _, t := range mine[keep:] {
		drop[t] = true
	}
	return r.deleteWhere(func(t *domain.RefreshToken) bool { return drop[t] }), nil
}

func (r *stubTokenRepo) deleteWhere(match func(*domain.RefreshToken) bool) int64 {
	kept := r.rows[:0]
	var n int64
	for _, t := range r.rows {
		if match(t) {
			n++
			continue
		}
		kept = append(kept, t)
	}
	r.rows = kept
	return n
}

type stubTaskRepo struct {
	tasks     map[string]*domain.Task
	createErr error
	listErr   error
}

func newStubTaskRepo() *stubTaskRepo {
	return &stubTaskRepo{tasks: make(map[string]*domain.Task)}
}

func cloneTask(t *domain.Task) *domain.Task {
	c := *t
	return &c
}

func (r *stubTaskRepo) List(_ context.Context, ownerID string) ([]*domain.Task, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []*domain.Task
	for _, t := range r.tasks {
		if t.UserID == ownerID && t.Visible() {
			out = append(out, cloneTask(t))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *stubTaskRepo) FindByID(_ context.Context, id, ownerID string) (*domain.Task, error) {
	t, ok := r.tasks[id]
	if !ok || t.UserID != ownerID || !t.Visible() {
		return nil, domain.ErrTaskNotFound
	}
	return cloneTask(t), nil
}

func (r *stubTaskRepo) Create(_ context.Context, task *domain.Task) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.tasks[task.ID] = cloneTask(task)
	return nil
}

func (r *stubTaskRepo) Update(_ context.Context, task *domain.Task) (*domain.Task, error) {
	cur, ok := r.tasks[task.ID]
	if !ok || cur.UserID != task.UserID || !cur.Visible() {
		return nil, domain.ErrTaskNotFound
	}
	cur.Title = task.Title
	cur.Description = task.Description
	cur.Status = task.Status
	cur.Priority = task.Priority
	cur.DueDate = task.DueDate
	cur.UpdatedAt = task.UpdatedAt
	return cloneTask(cur), nil
}

type stubIdempotencyStore struct {
	keys      map[string]string
	lookupErr error
	// blindLookups makes the next n lookups miss, as for creates that race
	// ahead of each other's Remember.
	blindLookups int
}

func newStubIdempotencyStore() *stubIdempotencyStore {
	return &stubIdempotencyStore{keys: make(map[string]string)}
}

func (s *stubIdempotencyStore) Lookup(_ context.Context, ownerID, key string) (string, bool, error) {
	if s.lookupErr != nil {
		return "", false, s.lookupErr
	}
	if s.blindLookups > 0 {
		s.blindLookups--
		return "", false, nil
	}
	id, ok := s.keys[ownerID+"|"+key]
	return id, ok, nil
}

func (s *stubIdempotencyStore) Remember(_ context.Context, ownerID, key, taskID string) error {
	k := ownerID + "|" + key
	if _, ok := s.keys[k]; !ok {
		s.keys[k] = taskID
	}
	return nil
}

var errBoom = errors.New("boom")
