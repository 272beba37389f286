package token

import (
	"strings"
	"sync"

	"github.com/aussiebroadwan/backoffice/pkg/kvx"
)

type ResolverConfig struct {
	// Mode is ModeJWT or ModeRedisToken. Anything else resolves to ModeJWT.
	Mode    string
	KV      kvx.Store
	Source  AuthInfoSource
	JWT     JWTConfig
	Session SessionConfig
}

// Resolver builds the configured Manager on first use and hands out that
// same instance afterwards.
type Resolver struct {
	cfg ResolverConfig

	once sync.Once
	mgr  Manager
	err  error
}

func NewResolver(cfg ResolverConfig) *Resolver {
	return &Resolver{cfg: cfg}
}

func (r *Resolver) Get() (Manager, error) {
	r.once.Do(func() {
		switch r.Mode() {
		case ModeRedisToken:
			r.mgr, r.err = NewSessionManager(r.cfg.KV, r.cfg.Session)
		default:
			r.mgr, r.err = NewJWTManager(r.cfg.KV, r.cfg.Source, r.cfg.JWT)
		}
	})
	return r.mgr, r.err
}

// Mode is the mode Get builds.
func (r *Resolver) Mode() string {
	if strings.EqualFold(strings.TrimSpace(r.cfg.Mode), ModeRedisToken) {
		return ModeRedisToken
	}
	return ModeJWT
}
