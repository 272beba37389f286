package store

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/backoffice/internal/auth/datascope"
	"github.com/aussiebroadwan/backoffice/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite, mysql)
// implement this. Sub-repositories hang off it so a transaction can hand out
// the same repos bound to the tx, and nobody can open a transaction inside
// one by accident.
type Store interface {
	Users() Users
	Roles() Roles
	Depts() Depts

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn in a transaction, committing if fn returns nil and
	// rolling back otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user by id, soft-deleted ones included.
	GetUserByID(ctx context.Context, id int64) (domain.User, error)

	// GetUserByUsername returns a live (not soft-deleted) user.
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// CreateUser inserts u and returns the new id.
	CreateUser(ctx context.Context, u domain.User) (int64, error)

	// UpdatePasswordHash sets the bcrypt hash and bumps update_time.
	UpdatePasswordHash(ctx context.Context, userID int64, newHash string) error

	// IsEmpty returns true if there are no users.
	IsEmpty(ctx context.Context) (bool, error)

	// ListUsers returns one page of live users matching q, restricted by
	// scope. The user table is aliased "u" for the predicate's columns.
	ListUsers(ctx context.Context, q domain.UserQuery, scope datascope.Predicate) (domain.Page[domain.UserView], error)
}

type Roles interface {
	// CreateRole inserts r and returns the new id.
	CreateRole(ctx context.Context, r domain.Role) (int64, error)

	GetRoleByCode(ctx context.Context, code string) (domain.Role, error)

	// AssignRole links a user to a role. Assigning twice is a no-op.
	AssignRole(ctx context.Context, userID, roleID int64) error

	// SetRoleDepts replaces the department list of a CUSTOM role.
	SetRoleDepts(ctx context.Context, roleID int64, deptIDs []int64) error

	// ListUserRoleScopes returns one scope per active role of the user,
	// ordered by role id. CUSTOM scopes carry their department ids.
	ListUserRoleScopes(ctx context.Context, userID int64) ([]domain.RoleDataScope, error)
}

type Depts interface {
	// CreateDept inserts d, deriving tree_path from the parent, and
	// returns the new id.
	CreateDept(ctx context.Context, d domain.Dept) (int64, error)

	GetDeptByID(ctx context.Context, id int64) (domain.Dept, error)

	// SubtreeIDs returns deptID and every live descendant. A missing or
	// deleted dept yields an empty list.
	SubtreeIDs(ctx context.Context, deptID int64) ([]int64, error)
}
