package service

import (
	"context"
	"sort"
	"strconv"
	"time"

	"github.com/aussiebroadwan/backoffice/internal/auth/domain"
	"github.com/aussiebroadwan/backoffice/pkg/kvx"
	"github.com/aussiebroadwan/backoffice/pkg/slogx"
)

// DefaultOnlineKey is the hash holding userId -> last login (unix millis).
const DefaultOnlineKey = "auth:online:users"

// OnlineUsers tracks who is signed in. Entries are written on login and
// removed on logout; the housekeeper prunes the ones nobody logged out of.
type OnlineUsers struct {
	KV  kvx.Store
	Key string
	Now func() time.Time
}

func NewOnlineUsers(kv kvx.Store) *OnlineUsers {
	return &OnlineUsers{KV: kv, Key: DefaultOnlineKey, Now: time.Now}
}

func (o *OnlineUsers) Record(ctx context.Context, userID int64) error {
	at := o.Now().UnixMilli()
	return o.KV.HSet(ctx, o.Key, strconv.FormatInt(userID, 10), strconv.FormatInt(at, 10))
}

func (o *OnlineUsers) Remove(ctx context.Context, userID int64) error {
	return o.KV.HDel(ctx, o.Key, strconv.FormatInt(userID, 10))
}

// List returns every entry, most recent login first. Malformed fields are
// skipped.
func (o *OnlineUsers) List(ctx context.Context) ([]domain.OnlineUser, error) {
	all, err := o.KV.HGetAll(ctx, o.Key)
	if err != nil {
		return nil, err
	}

	out := make([]domain.OnlineUser, 0, len(all))
	for field, value := range all {
		id, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			continue
		}
		at, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			continue
		}
		out = append(out, domain.OnlineUser{UserID: id, LoginAt: at})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].LoginAt != out[j].LoginAt {
			return out[i].LoginAt > out[j].LoginAt
		}
		return out[i].UserID < out[j].UserID
	})
	return out, nil
}

// Prune drops entries whose login is older than maxAge, plus malformed ones,
// and returns how many were removed.
func (o *OnlineUsers) Prune(ctx context.Context, maxAge time.Duration) (int, error) {
	all, err := o.KV.HGetAll(ctx, o.Key)
	if err != nil {
		return 0, err
	}

	cutoff := o.Now().Add(-maxAge).UnixMilli()
	var stale []string
	for field, value := range all {
		at, err := strconv.ParseInt(value, 10, 64)
		if err != nil || at < cutoff {
			stale = append(stale, field)
		}
	}
	if len(stale) == 0 {
		return 0, nil
	}

	if err := o.KV.HDel(ctx, o.Key, stale...); err != nil {
		return 0, err
	}
	slogx.FromContext(ctx).Debug("pruned online users", "count", len(stale))
	return len(stale), nil
}
