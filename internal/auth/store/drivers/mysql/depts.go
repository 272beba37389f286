package mysql

import (
	"context"
	"strconv"

	"github.com/aussiebroadwan/backoffice/internal/auth/domain"
	"gorm.io/gorm"
)

type deptsRepo struct {
	db *gorm.DB
}

func (r *deptsRepo) CreateDept(ctx context.Context, d domain.Dept) (int64, error) {
	treePath := "0"
	if d.ParentID > 0 {
		var parent sysDept
		if err := r.db.WithContext(ctx).Where("id = ?", d.ParentID).First(&parent).Error; err != nil {
			return 0, mapErr(err)
		}
		treePath = parent.TreePath + "," + strconv.FormatInt(parent.ID, 10)
	}

	m := &sysDept{
		Name:     d.Name,
		Code:     d.Code,
		ParentID: d.ParentID,
		TreePath: treePath,
		Status:   d.Status,
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return 0, mapErr(err)
	}
	return m.ID, nil
}

func (r *deptsRepo) GetDeptByID(ctx context.Context, id int64) (domain.Dept, error) {
	var m sysDept
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return domain.Dept{}, mapErr(err)
	}
	return m.toEntity(), nil
}

const subtreeIDs = `
WITH RECURSIVE subtree (id) AS (
    SELECT id FROM sys_dept WHERE id = ? AND is_deleted = 0
    UNION
    SELECT d.id FROM sys_dept d JOIN subtree s ON d.parent_id = s.id
    WHERE d.is_deleted = 0
)
SELECT id FROM subtree ORDER BY id`

// SubtreeIDs needs MySQL 8.0 for WITH RECURSIVE.
func (r *deptsRepo) SubtreeIDs(ctx context.Context, deptID int64) ([]int64, error) {
	var ids []int64
	if err := r.db.WithContext(ctx).Raw(subtreeIDs, deptID).Scan(&ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
