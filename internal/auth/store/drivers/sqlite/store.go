package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/aussiebroadwan/backoffice/internal/auth/domain"
	"github.com/aussiebroadwan/backoffice/internal/auth/store"
	_ "modernc.org/sqlite"
)

type Store struct {
	db  *sql.DB
	q   *queries
	dsn string
}

var _ store.Store = (*Store)(nil)

func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// An in-memory database lives and dies with its connection.
	if strings.Contains(dsn, ":memory:") {
		db.SetMaxOpenConns(1)
	}

	// Enforce FKs
	if _, err := db.ExecContext(context.Background(), `PRAGMA foreign_keys = ON;`); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{
		db:  db,
		q:   newQueries(db),
		dsn: dsn,
	}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Tx starts a read/write transaction and returns a Tx-scoped Store.
func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return newTx(tx), nil
}

// WithTx executes fn within a transaction, automatically handling commit/rollback.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.Tx(ctx)
	if err != nil {
		return err
	}

	defer func() {
		_ = tx.Rollback() // safe to call even after commit
	}()

	if err := fn(tx); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *Store) Users() store.Users { return &usersRepo{q: s.q} }
func (s *Store) Roles() store.Roles { return &rolesRepo{q: s.q, withTx: s.WithTx} }
func (s *Store) Depts() store.Depts { return &deptsRepo{q: s.q} }

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

func mapConflict(err error) error {
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return store.ErrAlreadyExists
	}
	return err
}

func mapNullInt64Ptr(n sql.NullInt64) *int64 {
	if n.Valid {
		v := n.Int64
		return &v
	}
	return nil
}

func mapOptionalInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func mapUser(row userRow) domain.User {
	return domain.User{
		ID:           row.ID,
		Username:     row.Username,
		Nickname:     row.Nickname,
		Mobile:       row.Mobile,
		DeptID:       mapNullInt64Ptr(row.DeptID),
		PasswordHash: row.Password,
		Status:       row.Status,
		Deleted:      row.IsDeleted != 0,
		CreatedBy:    mapNullInt64Ptr(row.CreateBy),
		CreatedAt:    row.CreateTime,
		UpdatedAt:    row.UpdateTime,
	}
}

func mapRole(row roleRow) domain.Role {
	return domain.Role{
		ID:        row.ID,
		Name:      row.Name,
		Code:      row.Code,
		DataScope: domain.DataScope(row.DataScope),
		Status:    row.Status,
		Deleted:   row.IsDeleted != 0,
		CreatedAt: row.CreateTime,
		UpdatedAt: row.UpdateTime,
	}
}

func mapDept(row deptRow) domain.Dept {
	return domain.Dept{
		ID:       row.ID,
		ParentID: row.ParentID,
		Name:     row.Name,
		Code:     row.Code,
		TreePath: row.TreePath,
		Status:   row.Status,
		Deleted:  row.IsDeleted != 0,
	}
}
