package sqlite

import (
	"context"
	"fmt"

	"github.com/aussiebroadwan/backoffice/internal/auth/domain"
	"github.com/aussiebroadwan/backoffice/internal/auth/store"
)

type rolesRepo struct {
	q *queries

	// withTx is nil when the repo already runs inside a transaction.
	withTx func(ctx context.Context, fn func(tx store.Tx) error) error
}

func (r *rolesRepo) CreateRole(ctx context.Context, role domain.Role) (int64, error) {
	if !role.DataScope.Valid() {
		return 0, fmt.Errorf("sqlite: invalid data scope %d", role.DataScope)
	}
	id, err := r.q.CreateRole(ctx, role.Name, role.Code, int(role.DataScope), role.Status)
	return id, mapConflict(err)
}

func (r *rolesRepo) GetRoleByCode(ctx context.Context, code string) (domain.Role, error) {
	row, err := r.q.GetRoleByCode(ctx, code)
	if err != nil {
		return domain.Role{}, mapNotFound(err)
	}
	return mapRole(row), nil
}

func (r *rolesRepo) AssignRole(ctx context.Context, userID, roleID int64) error {
	return r.q.AssignRole(ctx, userID, roleID)
}

func (r *rolesRepo) SetRoleDepts(ctx context.Context, roleID int64, deptIDs []int64) error {
	if r.withTx != nil {
		return r.withTx(ctx, func(tx store.Tx) error {
			return tx.Roles().SetRoleDepts(ctx, roleID, deptIDs)
		})
	}

	if err := r.q.DeleteRoleDepts(ctx, roleID); err != nil {
		return err
	}
	for _, id := range deptIDs {
		if err := r.q.InsertRoleDept(ctx, roleID, id); err != nil {
			return err
		}
	}
	return nil
}

func (r *rolesRepo) ListUserRoleScopes(ctx context.Context, userID int64) ([]domain.RoleDataScope, error) {
	roles, err := r.q.ListUserRoles(ctx, userID)
	if err != nil {
		return nil, err
	}

	scopes := make([]domain.RoleDataScope, 0, len(roles))
	for _, role := range roles {
		scope := domain.RoleDataScope{RoleCode: role.Code, DataScope: domain.DataScope(role.DataScope)}
		if scope.DataScope == domain.DataScopeCustom {
			ids, err := r.q.ListRoleDeptIDs(ctx, role.ID)
			if err != nil {
				return nil, err
			}
			scope.CustomDeptIDs = ids
		}
		scopes = append(scopes, scope.Normalize())
	}
	return scopes, nil
}
