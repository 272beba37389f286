package mysql

import (
	"context"
	"fmt"

	"github.com/aussiebroadwan/backoffice/internal/auth/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type rolesRepo struct {
	db *gorm.DB
}

func (r *rolesRepo) CreateRole(ctx context.Context, role domain.Role) (int64, error) {
	if !role.DataScope.Valid() {
		return 0, fmt.Errorf("mysql: invalid data scope %d", role.DataScope)
	}
	m := &sysRole{
		Name:      role.Name,
		Code:      role.Code,
		DataScope: int(role.DataScope),
		Status:    role.Status,
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return 0, mapErr(err)
	}
	return m.ID, nil
}

func (r *rolesRepo) GetRoleByCode(ctx context.Context, code string) (domain.Role, error) {
	var m sysRole
	err := r.db.WithContext(ctx).
		Where("code = ? AND is_deleted = 0", code).
		First(&m).Error
	if err != nil {
		return domain.Role{}, mapErr(err)
	}
	return m.toEntity(), nil
}

func (r *rolesRepo) AssignRole(ctx context.Context, userID, roleID int64) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&sysUserRole{UserID: userID, RoleID: roleID}).Error
}

func (r *rolesRepo) SetRoleDepts(ctx context.Context, roleID int64, deptIDs []int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role_id = ?", roleID).Delete(&sysRoleDept{}).Error; err != nil {
			return err
		}
		if len(deptIDs) == 0 {
			return nil
		}

		rows := make([]sysRoleDept, 0, len(deptIDs))
		for _, id := range deptIDs {
			rows = append(rows, sysRoleDept{RoleID: roleID, DeptID: id})
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
	})
}

type userRoleRow struct {
	ID        int64
	Code      string
	DataScope int
}

func (r *rolesRepo) ListUserRoleScopes(ctx context.Context, userID int64) ([]domain.RoleDataScope, error) {
	var roles []userRoleRow
	err := r.db.WithContext(ctx).
		Table("sys_role r").
		Select("r.id, r.code, r.data_scope").
		Joins("JOIN sys_user_role ur ON ur.role_id = r.id").
		Where("ur.user_id = ? AND r.status = 1 AND r.is_deleted = 0", userID).
		Order("r.id").
		Scan(&roles).Error
	if err != nil {
		return nil, err
	}

	scopes := make([]domain.RoleDataScope, 0, len(roles))
	for _, role := range roles {
		scope := domain.RoleDataScope{RoleCode: role.Code, DataScope: domain.DataScope(role.DataScope)}
		if scope.DataScope == domain.DataScopeCustom {
			var ids []int64
			err := r.db.WithContext(ctx).Model(&sysRoleDept{}).
				Where("role_id = ?", role.ID).
				Order("dept_id").
				Pluck("dept_id", &ids).Error
			if err != nil {
				return nil, err
			}
			scope.CustomDeptIDs = ids
		}
		scopes = append(scopes, scope.Normalize())
	}
	return scopes, nil
}
