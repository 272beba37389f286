package datascope

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/aussiebroadwan/backoffice/internal/auth/domain"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

type userRow struct {
	ID     int64
	DeptID int64
}

func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()

	sqlDB, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), &gorm.Config{DryRun: true})
	require.NoError(t, err)
	return db
}

func TestEngine_Apply(t *testing.T) {
	db := dryRunDB(t)
	e := NewEngine(nil)
	u := AuthUser{UserID: 5, DeptID: dept(7), DataScopes: []domain.RoleDataScope{domain.DeptScope("A"), domain.SelfScope("B")}}

	q, err := e.Apply(context.Background(), db.Table("sys_user u"), "u.dept_id", "u.id", u)
	require.NoError(t, err)

	var rows []userRow
	stmt := q.Find(&rows).Statement
	require.Contains(t, stmt.SQL.String(), "WHERE (u.dept_id = ? OR u.id = ?)")
	require.Equal(t, []any{int64(7), int64(5)}, stmt.Vars)
}

func TestEngine_ApplyUnrestricted(t *testing.T) {
	db := dryRunDB(t)
	e := NewEngine(nil)

	q, err := e.Apply(context.Background(), db.Table("sys_user u"), "u.dept_id", "u.id", AuthUser{UserID: 1, Roles: []string{"ROOT"}})
	require.NoError(t, err)

	var rows []userRow
	stmt := q.Find(&rows).Statement
	require.NotContains(t, stmt.SQL.String(), "WHERE")
}

func TestEngine_Scope(t *testing.T) {
	db := dryRunDB(t)
	e := NewEngine(nil)

	var rows []userRow
	stmt := db.Table("sys_user u").
		Scopes(e.Scope(context.Background(), "u.dept_id", "u.id", AuthUser{UserID: 5})).
		Find(&rows).Statement
	require.Contains(t, stmt.SQL.String(), "WHERE u.id = ?")

	err := db.Table("sys_user u").
		Scopes(e.Scope(context.Background(), "u.dept_id;", "u.id", AuthUser{UserID: 5})).
		Find(&rows).Error
	require.ErrorIs(t, err, ErrBadColumn)
}
