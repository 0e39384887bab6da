package auth

import (
	"context"
	"sort"
	"strings"
	"time"

	"bizbooks/internal/core/apperror"
)

type passThroughTx struct{ calls int }

func (m *passThroughTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.calls++
	return fn(ctx)
}

type plainHasher struct{}

func (plainHasher) Hash(p string) (string, error) { return "h:" + p, nil }
func (plainHasher) Verify(h, p string) bool       { return h == "h:"+p }

type memUserRepo struct {
	nextID  int64
	users   map[int64]*User
	deleted []int64
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[int64]*User{}}
}

func (r *memUserRepo) Create(_ context.Context, u *User) error {
	for _, existing := range r.users {
		if strings.EqualFold(existing.Username, u.Username) {
			return apperror.NewDuplicateName("user", u.Username)
		}
	}
	r.nextID++
	u.ID = r.nextID
	u.CreatedAt = time.Now()
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id int64) (*User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, apperror.NewNotFound("user", id)
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) FindByUsername(_ context.Context, username string) (*User, error) {
	for _, u := range r.users {
		if strings.EqualFold(u.Username, username) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("user", username)
}

func (r *memUserRepo) List(_ context.Context) ([]User, error) {
	out := make([]User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (r *memUserRepo) ExistsUsername(ctx context.Context, username string) (bool, error) {
	_, err := r.FindByUsername(ctx, username)
	return err == nil, nil
}

func (r *memUserRepo) SetBlocked(_ context.Context, id int64, blocked bool) error {
	r.users[id].IsBlocked = blocked
	return nil
}

func (r *memUserRepo) SetPassword(_ context.Context, id int64, hash string, mustChange bool) error {
	r.users[id].PasswordHash = hash
	r.users[id].MustChangePassword = mustChange
	return nil
}

func (r *memUserRepo) SetSubscriptionEnd(_ context.Context, id int64, end *time.Time) error {
	r.users[id].SubscriptionEndDate = end
	return nil
}

func (r *memUserRepo) SetAdmin(_ context.Context, id int64, isAdmin bool) error {
	r.users[id].IsAdmin = isAdmin
	return nil
}

func (r *memUserRepo) RecordFirstLogin(_ context.Context, id int64, at time.Time) error {
	if r.users[id].FirstLoginAt == nil {
		r.users[id].FirstLoginAt = &at
	}
	return nil
}

func (r *memUserRepo) Delete(_ context.Context, id int64) error {
	delete(r.users, id)
	r.deleted = append(r.deleted, id)
	return nil
}
