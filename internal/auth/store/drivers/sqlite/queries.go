package sqlite

import (
	"context"
	"database/sql"
	"time"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx, so every repo works the
// same inside and outside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type queries struct {
	db DBTX
}

func newQueries(db DBTX) *queries { return &queries{db: db} }

type userRow struct {
	ID         int64
	Username   string
	Nickname   string
	Mobile     string
	DeptID     sql.NullInt64
	Password   string
	Status     int
	IsDeleted  int
	CreateBy   sql.NullInt64
	CreateTime time.Time
	UpdateTime time.Time
}

const userColumns = `id, username, nickname, mobile, dept_id, password, status, is_deleted, create_by, create_time, update_time`

func scanUser(row interface{ Scan(...any) error }) (userRow, error) {
	var u userRow
	err := row.Scan(
		&u.ID, &u.Username, &u.Nickname, &u.Mobile, &u.DeptID, &u.Password,
		&u.Status, &u.IsDeleted, &u.CreateBy, &u.CreateTime, &u.UpdateTime,
	)
	return u, err
}

const getUserByID = `SELECT ` + userColumns + ` FROM sys_user WHERE id = ?`

func (q *queries) GetUserByID(ctx context.Context, id int64) (userRow, error) {
	return scanUser(q.db.QueryRowContext(ctx, getUserByID, id))
}

const getUserByUsername = `SELECT ` + userColumns + ` FROM sys_user WHERE username = ? AND is_deleted = 0`

func (q *queries) GetUserByUsername(ctx context.Context, username string) (userRow, error) {
	return scanUser(q.db.QueryRowContext(ctx, getUserByUsername, username))
}

const createUser = `
INSERT INTO sys_user (username, nickname, mobile, dept_id, password, status, create_by)
VALUES (?, ?, ?, ?, ?, ?, ?)
RETURNING id`

type createUserParams struct {
	Username string
	Nickname string
	Mobile   string
	DeptID   sql.NullInt64
	Password string
	Status   int
	CreateBy sql.NullInt64
}

func (q *queries) CreateUser(ctx context.Context, arg createUserParams) (int64, error) {
	var id int64
	err := q.db.QueryRowContext(ctx, createUser,
		arg.Username, arg.Nickname, arg.Mobile, arg.DeptID, arg.Password, arg.Status, arg.CreateBy,
	).Scan(&id)
	return id, err
}

const updateUserPassword = `
UPDATE sys_user SET password = ?, update_time = CURRENT_TIMESTAMP
WHERE id = ? AND is_deleted = 0`

func (q *queries) UpdateUserPassword(ctx context.Context, id int64, hash string) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateUserPassword, hash, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const countUsers = `SELECT COUNT(*) FROM sys_user`

func (q *queries) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countUsers).Scan(&n)
	return n, err
}

type roleRow struct {
	ID         int64
	Name       string
	Code       string
	DataScope  int
	Status     int
	IsDeleted  int
	CreateTime time.Time
	UpdateTime time.Time
}

const getRoleByCode = `
SELECT id, name, code, data_scope, status, is_deleted, create_time, update_time
FROM sys_role WHERE code = ? AND is_deleted = 0`

func (q *queries) GetRoleByCode(ctx context.Context, code string) (roleRow, error) {
	var r roleRow
	err := q.db.QueryRowContext(ctx, getRoleByCode, code).Scan(
		&r.ID, &r.Name, &r.Code, &r.DataScope, &r.Status, &r.IsDeleted, &r.CreateTime, &r.UpdateTime,
	)
	return r, err
}

const createRole = `
INSERT INTO sys_role (name, code, data_scope, status)
VALUES (?, ?, ?, ?)
RETURNING id`

func (q *queries) CreateRole(ctx context.Context, name, code string, dataScope, status int) (int64, error) {
	var id int64
	err := q.db.QueryRowContext(ctx, createRole, name, code, dataScope, status).Scan(&id)
	return id, err
}

const assignRole = `INSERT INTO sys_user_role (user_id, role_id) VALUES (?, ?) ON CONFLICT DO NOTHING`

func (q *queries) AssignRole(ctx context.Context, userID, roleID int64) error {
	_, err := q.db.ExecContext(ctx, assignRole, userID, roleID)
	return err
}

const deleteRoleDepts = `DELETE FROM sys_role_dept WHERE role_id = ?`

func (q *queries) DeleteRoleDepts(ctx context.Context, roleID int64) error {
	_, err := q.db.ExecContext(ctx, deleteRoleDepts, roleID)
	return err
}

const insertRoleDept = `INSERT INTO sys_role_dept (role_id, dept_id) VALUES (?, ?) ON CONFLICT DO NOTHING`

func (q *queries) InsertRoleDept(ctx context.Context, roleID, deptID int64) error {
	_, err := q.db.ExecContext(ctx, insertRoleDept, roleID, deptID)
	return err
}

const listUserRoles = `
SELECT r.id, r.code, r.data_scope
FROM sys_role r
JOIN sys_user_role ur ON ur.role_id = r.id
WHERE ur.user_id = ? AND r.status = 1 AND r.is_deleted = 0
ORDER BY r.id`

type userRoleRow struct {
	ID        int64
	Code      string
	DataScope int
}

func (q *queries) ListUserRoles(ctx context.Context, userID int64) ([]userRoleRow, error) {
	rows, err := q.db.QueryContext(ctx, listUserRoles, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []userRoleRow
	for rows.Next() {
		var r userRoleRow
		if err := rows.Scan(&r.ID, &r.Code, &r.DataScope); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

const listRoleDeptIDs = `SELECT dept_id FROM sys_role_dept WHERE role_id = ? ORDER BY dept_id`

func (q *queries) ListRoleDeptIDs(ctx context.Context, roleID int64) ([]int64, error) {
	return q.int64s(ctx, listRoleDeptIDs, roleID)
}

type deptRow struct {
	ID        int64
	Name      string
	Code      string
	ParentID  int64
	TreePath  string
	Status    int
	IsDeleted int
}

const getDeptByID = `
SELECT id, name, code, parent_id, tree_path, status, is_deleted
FROM sys_dept WHERE id = ?`

func (q *queries) GetDeptByID(ctx context.Context, id int64) (deptRow, error) {
	var d deptRow
	err := q.db.QueryRowContext(ctx, getDeptByID, id).Scan(
		&d.ID, &d.Name, &d.Code, &d.ParentID, &d.TreePath, &d.Status, &d.IsDeleted,
	)
	return d, err
}

const createDept = `
INSERT INTO sys_dept (name, code, parent_id, tree_path, status)
VALUES (?, ?, ?, ?, ?)
RETURNING id`

func (q *queries) CreateDept(ctx context.Context, name, code string, parentID int64, treePath string, status int) (int64, error) {
	var id int64
	err := q.db.QueryRowContext(ctx, createDept, name, code, parentID, treePath, status).Scan(&id)
	return id, err
}

// Walks parent_id downwards from the root dept; deleted depts prune their
// whole branch.
const subtreeIDs = `
WITH RECURSIVE subtree(id) AS (
    SELECT id FROM sys_dept WHERE id = ? AND is_deleted = 0
    UNION
    SELECT d.id FROM sys_dept d JOIN subtree s ON d.parent_id = s.id
    WHERE d.is_deleted = 0
)
SELECT id FROM subtree ORDER BY id`

func (q *queries) SubtreeIDs(ctx context.Context, deptID int64) ([]int64, error) {
	return q.int64s(ctx, subtreeIDs, deptID)
}

func (q *queries) int64s(ctx context.Context, query string, args ...any) ([]int64, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
