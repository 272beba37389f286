package mysql

import (
	"time"

	"github.com/aussiebroadwan/backoffice/internal/auth/domain"
)

type sysUser struct {
	ID         int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Username   string    `gorm:"column:username;type:varchar(64);uniqueIndex;not null"`
	Nickname   string    `gorm:"column:nickname;type:varchar(64);not null;default:''"`
	Mobile     string    `gorm:"column:mobile;type:varchar(20);not null;default:''"`
	DeptID     *int64    `gorm:"column:dept_id;index"`
	Password   string    `gorm:"column:password;type:varchar(100);not null"`
	Status     int       `gorm:"column:status;not null"`
	IsDeleted  int       `gorm:"column:is_deleted;not null;default:0"`
	CreateBy   *int64    `gorm:"column:create_by"`
	CreateTime time.Time `gorm:"column:create_time;autoCreateTime"`
	UpdateTime time.Time `gorm:"column:update_time;autoUpdateTime"`
}

func (sysUser) TableName() string { return "sys_user" }

type sysRole struct {
	ID         int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Name       string    `gorm:"column:name;type:varchar(64);not null"`
	Code       string    `gorm:"column:code;type:varchar(32);uniqueIndex;not null"`
	DataScope  int       `gorm:"column:data_scope;not null"`
	Status     int       `gorm:"column:status;not null"`
	IsDeleted  int       `gorm:"column:is_deleted;not null;default:0"`
	CreateTime time.Time `gorm:"column:create_time;autoCreateTime"`
	UpdateTime time.Time `gorm:"column:update_time;autoUpdateTime"`
}

func (sysRole) TableName() string { return "sys_role" }

type sysDept struct {
	ID         int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Name       string    `gorm:"column:name;type:varchar(100);not null"`
	Code       string    `gorm:"column:code;type:varchar(100);uniqueIndex;not null"`
	ParentID   int64     `gorm:"column:parent_id;index;not null;default:0"`
	TreePath   string    `gorm:"column:tree_path;type:varchar(255);not null"`
	Status     int       `gorm:"column:status;not null"`
	IsDeleted  int       `gorm:"column:is_deleted;not null;default:0"`
	CreateTime time.Time `gorm:"column:create_time;autoCreateTime"`
	UpdateTime time.Time `gorm:"column:update_time;autoUpdateTime"`
}

func (sysDept) TableName() string { return "sys_dept" }

type sysUserRole struct {
	UserID int64 `gorm:"column:user_id;primaryKey"`
	RoleID int64 `gorm:"column:role_id;primaryKey"`
}

func (sysUserRole) TableName() string { return "sys_user_role" }

type sysRoleDept struct {
	RoleID int64 `gorm:"column:role_id;primaryKey"`
	DeptID int64 `gorm:"column:dept_id;primaryKey"`
}

func (sysRoleDept) TableName() string { return "sys_role_dept" }

func allModels() []any {
	return []any{&sysDept{}, &sysUser{}, &sysRole{}, &sysUserRole{}, &sysRoleDept{}}
}

func (m *sysUser) toEntity() domain.User {
	return domain.User{
		ID:           m.ID,
		Username:     m.Username,
		Nickname:     m.Nickname,
		Mobile:       m.Mobile,
		DeptID:       m.DeptID,
		PasswordHash: m.Password,
		Status:       m.Status,
		Deleted:      m.IsDeleted != 0,
		CreatedBy:    m.CreateBy,
		CreatedAt:    m.CreateTime,
		UpdatedAt:    m.UpdateTime,
	}
}

func fromUser(u domain.User) *sysUser {
	return &sysUser{
		Username: u.Username,
		Nickname: u.Nickname,
		Mobile:   u.Mobile,
		DeptID:   u.DeptID,
		Password: u.PasswordHash,
		Status:   u.Status,
		CreateBy: u.CreatedBy,
	}
}

func (m *sysRole) toEntity() domain.Role {
	return domain.Role{
		ID:        m.ID,
		Name:      m.Name,
		Code:      m.Code,
		DataScope: domain.DataScope(m.DataScope),
		Status:    m.Status,
		Deleted:   m.IsDeleted != 0,
		CreatedAt: m.CreateTime,
		UpdatedAt: m.UpdateTime,
	}
}

func (m *sysDept) toEntity() domain.Dept {
	return domain.Dept{
		ID:       m.ID,
		ParentID: m.ParentID,
		Name:     m.Name,
		Code:     m.Code,
		TreePath: m.TreePath,
		Status:   m.Status,
		Deleted:  m.IsDeleted != 0,
	}
}
