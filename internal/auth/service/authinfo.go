package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/aussiebroadwan/backoffice/internal/auth/domain"
	"github.com/aussiebroadwan/backoffice/internal/auth/store"
	"github.com/aussiebroadwan/backoffice/internal/auth/token"
)

// AuthInfoLoader builds the identity a token carries from the system of
// record. It satisfies token.AuthInfoSource.
type AuthInfoLoader struct {
	Store store.Store
}

var _ token.AuthInfoSource = (*AuthInfoLoader)(nil)

// Load returns the user's current department, one data scope per active
// role and a ROLE_<code> authority for each. A missing, deleted or frozen
// user yields token.ErrSubjectGone.
func (l *AuthInfoLoader) Load(ctx context.Context, userID int64) (domain.UserAuthInfo, error) {
	user, err := l.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.UserAuthInfo{}, fmt.Errorf("user %d: %w", userID, token.ErrSubjectGone)
		}
		return domain.UserAuthInfo{}, err
	}
	if !user.Active() {
		return domain.UserAuthInfo{}, fmt.Errorf("user %d inactive: %w", userID, token.ErrSubjectGone)
	}

	return l.infoFor(ctx, user)
}

func (l *AuthInfoLoader) infoFor(ctx context.Context, user domain.User) (domain.UserAuthInfo, error) {
	scopes, err := l.Store.Roles().ListUserRoleScopes(ctx, user.ID)
	if err != nil {
		return domain.UserAuthInfo{}, fmt.Errorf("load role scopes: %w", err)
	}

	authorities := make([]string, 0, len(scopes))
	for _, s := range scopes {
		authorities = append(authorities, domain.RoleAuthority(s.RoleCode))
	}

	return domain.UserAuthInfo{
		UserID:      user.ID,
		DeptID:      user.DeptID,
		DataScopes:  scopes,
		Authorities: authorities,
	}, nil
}
