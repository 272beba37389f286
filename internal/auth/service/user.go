package service

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/backoffice/internal/auth/datascope"
	"github.com/aussiebroadwan/backoffice/internal/auth/domain"
	"github.com/aussiebroadwan/backoffice/internal/auth/store"
)

// Columns the user listing is filtered on.
const (
	userDeptColumn  = "u.dept_id"
	userOwnerColumn = "u.id"
)

type UserService struct {
	Store  store.Store
	Scopes *datascope.Engine
}

// Me returns the caller's own profile. Roles come from the token, not the
// database, so they match what the caller is currently authorized as.
func (s *UserService) Me(ctx context.Context, info domain.UserAuthInfo) (domain.CurrentUser, error) {
	user, err := s.Store.Users().GetUserByID(ctx, info.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.CurrentUser{}, ErrAccountNotFound
		}
		return domain.CurrentUser{}, err
	}
	if user.Deleted {
		return domain.CurrentUser{}, ErrAccountNotFound
	}

	me := domain.CurrentUser{
		UserID:   user.ID,
		Username: user.Username,
		Nickname: user.Nickname,
		DeptID:   user.DeptID,
		Roles:    info.Roles(),
	}
	if user.DeptID != nil {
		dept, err := s.Store.Depts().GetDeptByID(ctx, *user.DeptID)
		switch {
		case err == nil:
			me.DeptName = dept.Name
		case !errors.Is(err, store.ErrNotFound):
			return domain.CurrentUser{}, err
		}
	}
	return me, nil
}

// ListUsers returns the page of users the caller's data scopes allow.
func (s *UserService) ListUsers(ctx context.Context, u datascope.AuthUser, q domain.UserQuery) (domain.Page[domain.UserView], error) {
	var scope datascope.Predicate
	if !s.Scopes.HasAllPermission(u) {
		p, err := s.Scopes.Build(ctx, userDeptColumn, userOwnerColumn, u)
		if err != nil {
			return domain.Page[domain.UserView]{}, err
		}
		scope = p
	}
	return s.Store.Users().ListUsers(ctx, q, scope)
}
