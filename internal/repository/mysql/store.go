// Package mysql implements the repository contract on top of MySQL
// using database/sql. Queries follow the same raw-SQL style as the
// rest of the codebase: ExecContext/QueryRowContext with ?
// placeholders and sentinel errors mapped from sql.ErrNoRows.
package mysql

import (
	"context"
	"database/sql"

	"github.com/iliyamo/parking-lot-reservation/internal/repository"
)

// queryer is the subset of database/sql shared by *sql.DB and
// *sql.Tx, letting every repository run unchanged inside or outside
// a transaction.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store is the MySQL-backed entity store. The zero value is not
// usable; construct it with NewStore.
type Store struct {
	db   *sql.DB
	q    queryer
	inTx bool
}

// NewStore wraps an open database handle.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db, q: db}
}

// Users returns the user repository bound to this store's
// current query target (connection pool or open transaction).
func (s *Store) Users() repository.UserRepository { return &UserRepo{q: s.q} }

// Lots returns the parking lot repository.
func (s *Store) Lots() repository.LotRepository { return &LotRepo{q: s.q} }

// Spots returns the parking spot repository.
func (s *Store) Spots() repository.SpotRepository { return &SpotRepo{q: s.q, inTx: s.inTx} }

// Reservations returns the reservation repository.
func (s *Store) Reservations() repository.ReservationRepository { return &ReservationRepo{q: s.q} }

// Tokens returns the refresh token repository.
func (s *Store) Tokens() repository.TokenRepository { return &TokenRepo{q: s.q} }

// InTx runs fn within a single database transaction. The
// transaction is rolled back when fn returns an error, undoing any
// partially applied multi-step mutation. A nested call reuses the
// enclosing transaction instead of opening a second one.
func (s *Store) InTx(ctx context.Context, fn func(repository.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(&Store{db: s.db, q: tx, inTx: true}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
