package sqlite

import (
	"context"
	"strconv"

	"github.com/aussiebroadwan/backoffice/internal/auth/domain"
)

type deptsRepo struct {
	q *queries
}

// CreateDept stores d under its parent. tree_path is the parent's path with
// the parent id appended; a root dept gets "0".
func (r *deptsRepo) CreateDept(ctx context.Context, d domain.Dept) (int64, error) {
	treePath := "0"
	if d.ParentID > 0 {
		parent, err := r.q.GetDeptByID(ctx, d.ParentID)
		if err != nil {
			return 0, mapNotFound(err)
		}
		treePath = parent.TreePath + "," + strconv.FormatInt(parent.ID, 10)
	}

	id, err := r.q.CreateDept(ctx, d.Name, d.Code, d.ParentID, treePath, d.Status)
	return id, mapConflict(err)
}

func (r *deptsRepo) GetDeptByID(ctx context.Context, id int64) (domain.Dept, error) {
	row, err := r.q.GetDeptByID(ctx, id)
	if err != nil {
		return domain.Dept{}, mapNotFound(err)
	}
	return mapDept(row), nil
}

func (r *deptsRepo) SubtreeIDs(ctx context.Context, deptID int64) ([]int64, error) {
	return r.q.SubtreeIDs(ctx, deptID)
}
