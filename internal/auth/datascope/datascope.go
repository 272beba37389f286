// Package datascope turns a caller's role data scopes into a row filter.
//
// Each role grants a slice of department or ownership scoped rows; a caller
// with several roles sees the union of those slices. The result is a single
// SQL predicate over two columns of the row: the owning department and the
// owning user.
package datascope

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/aussiebroadwan/backoffice/internal/auth/domain"
)

var ErrBadColumn = errors.New("datascope: invalid column reference")

// AuthUser is the authorization context a filter is built for.
type AuthUser struct {
	UserID     int64
	DeptID     *int64
	DataScopes []domain.RoleDataScope
	Roles      []string // role codes, without the ROLE_ prefix
}

// FromAuthInfo derives the context from a parsed token.
func FromAuthInfo(info domain.UserAuthInfo) AuthUser {
	return AuthUser{
		UserID:     info.UserID,
		DeptID:     info.DeptID,
		DataScopes: info.DataScopes,
		Roles:      info.Roles(),
	}
}

func (u AuthUser) deptID() (int64, bool) {
	if u.DeptID == nil || *u.DeptID <= 0 {
		return 0, false
	}
	return *u.DeptID, true
}

// Predicate is a boolean SQL expression with positional "?" arguments. The
// zero value places no restriction.
type Predicate struct {
	SQL  string
	Args []any
}

func (p Predicate) Unrestricted() bool { return p.SQL == "" }

// MatchNothing is the fail-closed predicate.
var MatchNothing = Predicate{SQL: "1 = 0"}

// DeptTree resolves a department and all of its descendants.
type DeptTree interface {
	SubtreeIDs(ctx context.Context, deptID int64) ([]int64, error)
}

type Engine struct {
	Depts DeptTree

	// SuperAdminRole bypasses filtering entirely. Defaults to
	// domain.SuperAdminRole.
	SuperAdminRole string
}

func NewEngine(depts DeptTree) *Engine {
	return &Engine{Depts: depts, SuperAdminRole: domain.SuperAdminRole}
}

var columnRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// Build returns the predicate restricting rows to what u may see. deptCol and
// userCol are column references such as "u.dept_id" and "u.create_by".
func (e *Engine) Build(ctx context.Context, deptCol, userCol string, u AuthUser) (Predicate, error) {
	if !columnRe.MatchString(deptCol) || !columnRe.MatchString(userCol) {
		return Predicate{}, fmt.Errorf("%w: %q, %q", ErrBadColumn, deptCol, userCol)
	}

	// 1. Super admin sees everything
	if e.isSuperAdmin(u) {
		return Predicate{}, nil
	}

	// 2. No scopes at all: own rows only
	if len(u.DataScopes) == 0 {
		if u.UserID <= 0 {
			return MatchNothing, nil
		}
		return Predicate{SQL: userCol + " = ?", Args: []any{u.UserID}}, nil
	}

	// 3. ALL absorbs every other grant
	if hasAllScope(u.DataScopes) {
		return Predicate{}, nil
	}

	// 4. OR together one condition per scope
	var (
		conds []string
		args  []any
	)
	for _, s := range u.DataScopes {
		cond, condArgs, err := e.condition(ctx, s, deptCol, userCol, u)
		if err != nil {
			return Predicate{}, err
		}
		if cond == "" {
			continue
		}
		conds = append(conds, cond)
		args = append(args, condArgs...)
	}

	if len(conds) == 0 {
		return MatchNothing, nil
	}

	return Predicate{SQL: "(" + strings.Join(conds, " OR ") + ")", Args: args}, nil
}

// condition builds one scope's clause. An empty clause drops out of the
// union.
func (e *Engine) condition(ctx context.Context, s domain.RoleDataScope, deptCol, userCol string, u AuthUser) (string, []any, error) {
	switch s.DataScope {
	case domain.DataScopeAll:
		return "", nil, nil

	case domain.DataScopeDept:
		dept, ok := u.deptID()
		if !ok {
			return "", nil, nil
		}
		return deptCol + " = ?", []any{dept}, nil

	case domain.DataScopeDeptAndSub:
		dept, ok := u.deptID()
		if !ok {
			return "", nil, nil
		}

		var ids []int64
		if e.Depts != nil {
			var err error
			ids, err = e.Depts.SubtreeIDs(ctx, dept)
			if err != nil {
				return "", nil, fmt.Errorf("datascope: resolve subtree of dept %d: %w", dept, err)
			}
		}
		if len(ids) == 0 {
			return deptCol + " = ?", []any{dept}, nil
		}
		return inClause(deptCol, ids)

	case domain.DataScopeCustom:
		if len(s.CustomDeptIDs) == 0 {
			return MatchNothing.SQL, nil, nil
		}
		return inClause(deptCol, s.CustomDeptIDs)

	default:
		// DataScopeSelf, and anything unrecognised
		if u.UserID <= 0 {
			return "", nil, nil
		}
		return userCol + " = ?", []any{u.UserID}, nil
	}
}

func inClause(col string, ids []int64) (string, []any, error) {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return col + " IN (" + strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",") + ")", args, nil
}

// HasAllPermission reports whether u is never filtered.
func (e *Engine) HasAllPermission(u AuthUser) bool {
	return e.isSuperAdmin(u) || hasAllScope(u.DataScopes)
}

func (e *Engine) isSuperAdmin(u AuthUser) bool {
	root := e.SuperAdminRole
	if root == "" {
		root = domain.SuperAdminRole
	}
	for _, r := range u.Roles {
		if r == root {
			return true
		}
	}
	return false
}

func hasAllScope(scopes []domain.RoleDataScope) bool {
	for _, s := range scopes {
		if s.DataScope == domain.DataScopeAll {
			return true
		}
	}
	return false
}
