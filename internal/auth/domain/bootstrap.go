package domain

// BootstrapData seeds an empty system with its root department, the
// super-admin role and the first administrator.
type BootstrapData struct {
	AdminUsername string
	AdminNickname string
	AdminPassword string
	RootDeptName  string
	RootDeptCode  string
}
