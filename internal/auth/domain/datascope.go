package domain

import (
	"encoding/json"
	"fmt"
)

// DataScope is a role's row-visibility grant. Smaller values are broader.
type DataScope int

const (
	DataScopeAll        DataScope = 1
	DataScopeDeptAndSub DataScope = 2
	DataScopeDept       DataScope = 3
	DataScopeSelf       DataScope = 4
	DataScopeCustom     DataScope = 5
)

func (d DataScope) Valid() bool {
	return d >= DataScopeAll && d <= DataScopeCustom
}

// Label is the human readable name shown in admin screens.
func (d DataScope) Label() string {
	switch d {
	case DataScopeAll:
		return "all data"
	case DataScopeDeptAndSub:
		return "department and sub-departments"
	case DataScopeDept:
		return "own department"
	case DataScopeSelf:
		return "own records"
	case DataScopeCustom:
		return "custom departments"
	default:
		return fmt.Sprintf("DataScope(%d)", int(d))
	}
}

// RoleDataScope is one role's visibility grant. CustomDeptIDs is only ever
// non-nil for DataScopeCustom; an empty non-nil slice means "no departments".
type RoleDataScope struct {
	RoleCode      string    `json:"roleCode"`
	DataScope     DataScope `json:"dataScope"`
	CustomDeptIDs []int64   `json:"customDeptIds,omitempty"`
}

func AllScope(role string) RoleDataScope {
	return RoleDataScope{RoleCode: role, DataScope: DataScopeAll}
}

func DeptAndSubScope(role string) RoleDataScope {
	return RoleDataScope{RoleCode: role, DataScope: DataScopeDeptAndSub}
}

func DeptScope(role string) RoleDataScope {
	return RoleDataScope{RoleCode: role, DataScope: DataScopeDept}
}

func SelfScope(role string) RoleDataScope {
	return RoleDataScope{RoleCode: role, DataScope: DataScopeSelf}
}

// CustomScope grants the listed departments. A nil or empty list grants
// nothing.
func CustomScope(role string, deptIDs []int64) RoleDataScope {
	ids := make([]int64, len(deptIDs))
	copy(ids, deptIDs)
	return RoleDataScope{RoleCode: role, DataScope: DataScopeCustom, CustomDeptIDs: ids}
}

// Normalize drops CustomDeptIDs from non-custom scopes and gives custom
// scopes a non-nil list.
func (s RoleDataScope) Normalize() RoleDataScope {
	switch {
	case s.DataScope != DataScopeCustom:
		s.CustomDeptIDs = nil
	case s.CustomDeptIDs == nil:
		s.CustomDeptIDs = []int64{}
	}
	return s
}

func (s *RoleDataScope) UnmarshalJSON(b []byte) error {
	type plain RoleDataScope
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*s = RoleDataScope(p).Normalize()
	return nil
}
