// Package mysql is the gorm-backed MySQL driver for the auth store.
package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aussiebroadwan/backoffice/internal/auth/store"
	mysqlDriver "gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Store struct {
	db   *gorm.DB
	inTx bool
}

var (
	_ store.Store = (*Store)(nil)
	_ store.Tx    = (*Store)(nil)
)

func gormConfig() *gorm.Config {
	return &gorm.Config{
		// Single statements do not need gorm's implicit transaction; WithTx
		// is the only place writes are grouped.
		SkipDefaultTransaction: true,
		TranslateError:         true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	}
}

// NewStore opens a MySQL connection. dsn is a go-sql-driver DSN, e.g.
// "user:pass@tcp(127.0.0.1:3306)/backoffice?parseTime=true".
func NewStore(dsn string) (*Store, error) {
	db, err := gorm.Open(mysqlDriver.Open(dsn), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	return &Store{db: db}, nil
}

// NewStoreFromConn wraps an existing connection pool. The server version is
// not probed.
func NewStoreFromConn(conn *sql.DB) (*Store, error) {
	db, err := gorm.Open(mysqlDriver.New(mysqlDriver.Config{
		Conn:                      conn,
		SkipInitializeWithVersion: true,
	}), gormConfig())
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// ApplyMigrations creates or updates the tables from the models.
func (s *Store) ApplyMigrations() error {
	if err := s.db.AutoMigrate(allModels()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	if s.inTx {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Tx starts a transaction. Nested transactions are rejected.
func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	if s.inTx {
		return nil, sql.ErrTxDone
	}
	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	return &Store{db: tx, inTx: true}, nil
}

func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.Tx(ctx)
	if err != nil {
		return err
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

func (s *Store) Commit() error {
	if !s.inTx {
		return sql.ErrTxDone
	}
	return s.db.Commit().Error
}

func (s *Store) Rollback() error {
	if !s.inTx {
		return sql.ErrTxDone
	}
	return s.db.Rollback().Error
}

func (s *Store) Users() store.Users { return &usersRepo{db: s.db} }
func (s *Store) Roles() store.Roles { return &rolesRepo{db: s.db} }
func (s *Store) Depts() store.Depts { return &deptsRepo{db: s.db} }

func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return store.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return store.ErrAlreadyExists
	default:
		return err
	}
}
