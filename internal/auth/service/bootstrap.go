package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aussiebroadwan/backoffice/internal/auth/domain"
	"github.com/aussiebroadwan/backoffice/internal/auth/store"
	"github.com/aussiebroadwan/backoffice/pkg/cryptox"
	"github.com/aussiebroadwan/backoffice/pkg/slogx"
)

var ErrBootstrapAlready = errors.New("service: system already bootstrapped")

type BootstrapService struct {
	Store store.Store
}

// IsBootstrapped reports whether any user exists.
func (s *BootstrapService) IsBootstrapped(ctx context.Context) (bool, error) {
	empty, err := s.Store.Users().IsEmpty(ctx)
	if err != nil {
		return false, err
	}
	return !empty, nil
}

// Bootstrap seeds an empty system with the root department, the super-admin
// role and an administrator holding it. It returns the admin's user id.
func (s *BootstrapService) Bootstrap(ctx context.Context, req domain.BootstrapData) (int64, error) {
	l := slogx.FromContext(ctx)

	req.AdminUsername = strings.TrimSpace(req.AdminUsername)
	if req.AdminUsername == "" || len(req.AdminPassword) < MinPasswordLength {
		return 0, fmt.Errorf("%w: bootstrap needs an admin username and a password of at least %d characters",
			ErrInvalidInput, MinPasswordLength)
	}
	if req.RootDeptName == "" {
		req.RootDeptName = "Head Office"
	}
	if req.RootDeptCode == "" {
		req.RootDeptCode = "ROOT"
	}
	if req.AdminNickname == "" {
		req.AdminNickname = req.AdminUsername
	}

	// 1. Check if already bootstrapped
	if done, err := s.IsBootstrapped(ctx); err != nil {
		return 0, err
	} else if done {
		return 0, ErrBootstrapAlready
	}

	// 2. Hash password
	hash, err := cryptox.HashPassword(req.AdminPassword)
	if err != nil {
		return 0, err
	}

	// 3. Dept, role and admin in one transaction
	var adminID int64
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		deptID, err := tx.Depts().CreateDept(ctx, domain.Dept{
			Name:   req.RootDeptName,
			Code:   req.RootDeptCode,
			Status: 1,
		})
		if err != nil {
			return fmt.Errorf("create root dept: %w", err)
		}

		roleID, err := tx.Roles().CreateRole(ctx, domain.Role{
			Name:      "Super Administrator",
			Code:      domain.SuperAdminRole,
			DataScope: domain.DataScopeAll,
			Status:    1,
		})
		if err != nil {
			return fmt.Errorf("create super admin role: %w", err)
		}

		adminID, err = tx.Users().CreateUser(ctx, domain.User{
			Username:     req.AdminUsername,
			Nickname:     req.AdminNickname,
			DeptID:       &deptID,
			PasswordHash: hash,
			Status:       domain.UserStatusActive,
		})
		if err != nil {
			return fmt.Errorf("create admin user: %w", err)
		}

		return tx.Roles().AssignRole(ctx, adminID, roleID)
	})
	if err != nil {
		l.Error("bootstrap failed", slog.Any("error", err))
		return 0, err
	}

	l.Info("successfully bootstrapped system", slog.Int64("admin_user_id", adminID))
	return adminID, nil
}
