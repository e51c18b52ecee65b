package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/Great2008/reads/internal/app"
)

// Store implements app.Store over bun. It works against either the
// root *bun.DB or a bun.Tx, which is how InTx hands transaction-bound
// stores back to services.
type Store struct {
	db bun.IDB
}

func NewStore(db *bun.DB) *Store {
	return &Store{db: db}
}

// InTx runs fn against a Store bound to one transaction. When the
// receiver is already transaction-bound, fn joins the open transaction.
func (s *Store) InTx(ctx context.Context, fn func(app.Store) error) error {
	if _, ok := s.db.(bun.Tx); ok {
		return fn(s)
	}
	db, ok := s.db.(*bun.DB)
	if !ok {
		return errors.New("postgres: store is not transactable")
	}
	return db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		return fn(&Store{db: tx})
	})
}

// isUniqueViolation reports whether err is a Postgres unique-constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr pgdriver.Error
	return errors.As(err, &pgErr) && pgErr.Field('C') == "23505"
}
