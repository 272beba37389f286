package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoleDataScope_CustomSurvivesJSON(t *testing.T) {
	in := CustomScope("AUDIT", []int64{3, 8, 13})

	b, err := json.Marshal(in)
	require.NoError(t, err)
	require.JSONEq(t, `{"roleCode":"AUDIT","dataScope":5,"customDeptIds":[3,8,13]}`, string(b))

	var out RoleDataScope
	require.NoError(t, json.Unmarshal(b, &out))
	require.Equal(t, in, out)
}

func TestRoleDataScope_NormalizeEnforcesCustomOnlyIDs(t *testing.T) {
	var s RoleDataScope
	require.NoError(t, json.Unmarshal([]byte(`{"roleCode":"X","dataScope":3,"customDeptIds":[1,2]}`), &s))
	require.Nil(t, s.CustomDeptIDs)

	require.NoError(t, json.Unmarshal([]byte(`{"roleCode":"X","dataScope":5}`), &s))
	require.NotNil(t, s.CustomDeptIDs)
	require.Empty(t, s.CustomDeptIDs)
}

func TestCustomScope_CopiesInput(t *testing.T) {
	ids := []int64{1, 2}
	s := CustomScope("X", ids)
	ids[0] = 99

	require.Equal(t, []int64{1, 2}, s.CustomDeptIDs)
}

func TestDataScope_Valid(t *testing.T) {
	for d := DataScopeAll; d <= DataScopeCustom; d++ {
		require.True(t, d.Valid(), d.Label())
	}
	require.False(t, DataScope(0).Valid())
	require.False(t, DataScope(6).Valid())
	require.Equal(t, "DataScope(6)", DataScope(6).Label())
}

func TestUserAuthInfo_Roles(t *testing.T) {
	info := UserAuthInfo{Authorities: []string{"ROLE_ROOT", "sys:user:add", "ROLE_", "ROLE_AUDIT"}}
	require.Equal(t, []string{"ROOT", "AUDIT"}, info.Roles())
}

func TestUserQuery_Normalize(t *testing.T) {
	q := UserQuery{PageNum: 0, PageSize: 9999}.Normalize()
	require.Equal(t, 1, q.PageNum)
	require.Equal(t, 500, q.PageSize)
	require.Equal(t, 0, q.Offset())

	q = UserQuery{PageNum: 3, PageSize: 20}.Normalize()
	require.Equal(t, 40, q.Offset())
}
