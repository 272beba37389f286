package domain

import "time"

type Role struct {
	ID        int64
	Name      string
	Code      string
	DataScope DataScope
	Status    int
	Deleted   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (r Role) Active() bool { return r.Status == 1 && !r.Deleted }

type Dept struct {
	ID       int64
	ParentID int64 // 0 for the root
	Name     string
	Code     string
	TreePath string // comma-joined ancestor ids, "0" for the root
	Status   int
	Deleted  bool
}
