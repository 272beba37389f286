package mysql

import (
	"context"
	"strings"
	"time"

	"github.com/aussiebroadwan/backoffice/internal/auth/datascope"
	"github.com/aussiebroadwan/backoffice/internal/auth/domain"
	"github.com/aussiebroadwan/backoffice/internal/auth/store"
	"gorm.io/gorm"
)

type usersRepo struct {
	db *gorm.DB
}

func (r *usersRepo) GetUserByID(ctx context.Context, id int64) (domain.User, error) {
	var m sysUser
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return domain.User{}, mapErr(err)
	}
	return m.toEntity(), nil
}

func (r *usersRepo) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	var m sysUser
	err := r.db.WithContext(ctx).
		Where("username = ? AND is_deleted = 0", username).
		First(&m).Error
	if err != nil {
		return domain.User{}, mapErr(err)
	}
	return m.toEntity(), nil
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) (int64, error) {
	m := fromUser(u)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return 0, mapErr(err)
	}
	return m.ID, nil
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, userID int64, newHash string) error {
	res := r.db.WithContext(ctx).Model(&sysUser{}).
		Where("id = ? AND is_deleted = 0", userID).
		Updates(map[string]any{"password": newHash, "update_time": time.Now()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	// MySQL reports changed rows, not matched rows.
	var n int64
	if err := r.db.WithContext(ctx).Model(&sysUser{}).
		Where("id = ? AND is_deleted = 0", userID).
		Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *usersRepo) IsEmpty(ctx context.Context) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&sysUser{}).Count(&n).Error; err != nil {
		return false, err
	}
	return n == 0, nil
}

type userViewRow struct {
	ID       int64
	Username string
	Nickname string
	Mobile   string
	DeptID   *int64
	DeptName string
	Status   int
}

func (r *usersRepo) ListUsers(ctx context.Context, q domain.UserQuery, scope datascope.Predicate) (domain.Page[domain.UserView], error) {
	q = q.Normalize()

	// Count and Find each get a fresh chain.
	filtered := func() *gorm.DB {
		tx := r.db.WithContext(ctx).
			Table("sys_user u").
			Joins("LEFT JOIN sys_dept d ON d.id = u.dept_id").
			Where("u.is_deleted = 0")

		if kw := strings.TrimSpace(q.Keywords); kw != "" {
			like := "%" + kw + "%"
			tx = tx.Where("u.username LIKE ? OR u.nickname LIKE ? OR u.mobile LIKE ?", like, like, like)
		}
		if q.Status != nil {
			tx = tx.Where("u.status = ?", *q.Status)
		}
		if q.DeptID != nil {
			tx = tx.Where("u.dept_id = ?", *q.DeptID)
		}
		return tx.Scopes(datascope.Where(scope))
	}

	page := domain.Page[domain.UserView]{List: []domain.UserView{}}
	if err := filtered().Count(&page.Total).Error; err != nil {
		return page, err
	}
	if page.Total == 0 {
		return page, nil
	}

	var rows []userViewRow
	err := filtered().
		Select("u.id, u.username, u.nickname, u.mobile, u.dept_id, COALESCE(d.name, '') AS dept_name, u.status").
		Order("u.id").
		Limit(q.PageSize).
		Offset(q.Offset()).
		Scan(&rows).Error
	if err != nil {
		return page, err
	}

	for _, row := range rows {
		page.List = append(page.List, domain.UserView(row))
	}
	return page, nil
}
