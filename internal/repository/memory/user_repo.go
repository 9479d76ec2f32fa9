package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/iliyamo/parking-lot-reservation/internal/model"
	"github.com/iliyamo/parking-lot-reservation/internal/repository"
)

// UserRepo implements repository.UserRepository on the in-memory
// tables.
type UserRepo struct{ s *Store }

// Create stores a user and assigns its id. Username and email
// uniqueness is enforced the way the unique indexes do in MySQL.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	defer r.s.lock()()
	for _, existing := range r.s.t.users {
		if existing.Username == u.Username || existing.Email == u.Email {
			return repository.ErrUsernameExists
		}
	}
	r.s.t.userSeq++
	u.ID = r.s.t.userSeq
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	r.s.t.users[u.ID] = *u
	return nil
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	defer r.s.rlock()()
	u, ok := r.s.t.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return &u, nil
}

// GetByUsername fetches a user by its normalized username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	defer r.s.rlock()()
	username = strings.TrimSpace(username)
	for _, u := range r.s.t.users {
		if u.Username == username {
			out := u
			return &out, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

// ListNonAdmins returns regular user accounts ordered by id.
func (r *UserRepo) ListNonAdmins(ctx context.Context) ([]model.User, error) {
	defer r.s.rlock()()
	var result []model.User
	for _, u := range r.s.t.users {
		if !u.IsAdmin {
			result = append(result, u)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// CountNonAdmins counts regular user accounts.
func (r *UserRepo) CountNonAdmins(ctx context.Context) (int, error) {
	defer r.s.rlock()()
	n := 0
	for _, u := range r.s.t.users {
		if !u.IsAdmin {
			n++
		}
	}
	return n, nil
}

// Delete removes a user and all of the user's reservations.
func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
	defer r.s.lock()()
	if _, ok := r.s.t.users[id]; !ok {
		return repository.ErrUserNotFound
	}
	for rid, res := range r.s.t.reservations {
		if res.UserID == id {
			delete(r.s.t.reservations, rid)
		}
	}
	delete(r.s.t.users, id)
	return nil
}
