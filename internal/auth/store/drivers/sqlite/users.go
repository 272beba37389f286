package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/aussiebroadwan/backoffice/internal/auth/datascope"
	"github.com/aussiebroadwan/backoffice/internal/auth/domain"
	"github.com/aussiebroadwan/backoffice/internal/auth/store"
)

type usersRepo struct {
	q *queries
}

func (r *usersRepo) GetUserByID(ctx context.Context, id int64) (domain.User, error) {
	row, err := r.q.GetUserByID(ctx, id)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return mapUser(row), nil
}

func (r *usersRepo) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	row, err := r.q.GetUserByUsername(ctx, username)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return mapUser(row), nil
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) (int64, error) {
	id, err := r.q.CreateUser(ctx, createUserParams{
		Username: u.Username,
		Nickname: u.Nickname,
		Mobile:   u.Mobile,
		DeptID:   mapOptionalInt64(u.DeptID),
		Password: u.PasswordHash,
		Status:   u.Status,
		CreateBy: mapOptionalInt64(u.CreatedBy),
	})
	return id, mapConflict(err)
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, userID int64, newHash string) error {
	n, err := r.q.UpdateUserPassword(ctx, userID, newHash)
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *usersRepo) IsEmpty(ctx context.Context) (bool, error) {
	count, err := r.q.CountUsers(ctx)
	if err != nil {
		return false, err
	}
	return count == 0, nil
}

func (r *usersRepo) ListUsers(ctx context.Context, q domain.UserQuery, scope datascope.Predicate) (domain.Page[domain.UserView], error) {
	q = q.Normalize()

	where := []string{"u.is_deleted = 0"}
	var args []any

	if kw := strings.TrimSpace(q.Keywords); kw != "" {
		like := "%" + kw + "%"
		where = append(where, "(u.username LIKE ? OR u.nickname LIKE ? OR u.mobile LIKE ?)")
		args = append(args, like, like, like)
	}
	if q.Status != nil {
		where = append(where, "u.status = ?")
		args = append(args, *q.Status)
	}
	if q.DeptID != nil {
		where = append(where, "u.dept_id = ?")
		args = append(args, *q.DeptID)
	}
	if !scope.Unrestricted() {
		where = append(where, scope.SQL)
		args = append(args, scope.Args...)
	}

	from := " FROM sys_user u LEFT JOIN sys_dept d ON d.id = u.dept_id WHERE " + strings.Join(where, " AND ")

	var page domain.Page[domain.UserView]
	if err := r.q.db.QueryRowContext(ctx, "SELECT COUNT(*)"+from, args...).Scan(&page.Total); err != nil {
		return page, err
	}

	page.List = []domain.UserView{}
	if page.Total == 0 {
		return page, nil
	}

	rows, err := r.q.db.QueryContext(ctx,
		"SELECT u.id, u.username, u.nickname, u.mobile, u.dept_id, COALESCE(d.name, ''), u.status"+from+
			" ORDER BY u.id LIMIT ? OFFSET ?",
		append(args, q.PageSize, q.Offset())...,
	)
	if err != nil {
		return page, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			v      domain.UserView
			deptID sql.NullInt64
		)
		if err := rows.Scan(&v.ID, &v.Username, &v.Nickname, &v.Mobile, &deptID, &v.DeptName, &v.Status); err != nil {
			return page, err
		}
		v.DeptID = mapNullInt64Ptr(deptID)
		page.List = append(page.List, v)
	}

	return page, rows.Err()
}
