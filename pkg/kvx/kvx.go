// Package kvx is the thin key-value adapter the token managers share. Every
// caller depends on the Store interface so tests can run against miniredis or
// any other implementation.
package kvx

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNil is returned by Get and HGet when the key (or field) does not exist.
var ErrNil = errors.New("kvx: nil")

// Store is the subset of cache operations the auth core needs. All calls are
// single round trips; nothing here spans more than one command.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	SetEX(ctx context.Context, key, value string, ttl time.Duration) error
	Incr(ctx context.Context, key string) (int64, error)
	Del(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)

	HSet(ctx context.Context, key, field, value string) error
	HGet(ctx context.Context, key, field string) (string, error)
	HDel(ctx context.Context, key string, fields ...string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)

	Ping(ctx context.Context) error
	Close() error
}

// Placeholder is the token replaced by Key.
const Placeholder = "{}"

// Key fills each "{}" in pattern with the next argument, left to right. Extra
// placeholders are left untouched and extra arguments are ignored, which
// matches how the key templates are configured.
func Key(pattern string, args ...any) string {
	if len(args) == 0 {
		return pattern
	}

	var b strings.Builder
	b.Grow(len(pattern) + 16*len(args))

	rest := pattern
	for _, arg := range args {
		i := strings.Index(rest, Placeholder)
		if i < 0 {
			break
		}
		b.WriteString(rest[:i])
		fmt.Fprint(&b, arg)
		rest = rest[i+len(Placeholder):]
	}
	b.WriteString(rest)

	return b.String()
}
