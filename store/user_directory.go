package store

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/rushteam/shoprec/core"
)

// 用户目录存储 key 约定
const usersKey = "users" // 哈希：field=user_id, value=JSON

// UserDirectory 是 KeyValueStore 之上的用户目录实现。
// 用户归属身份协作方，本实现是其数据的只读投影（Put 仅供同步任务/测试灌数）。
type UserDirectory struct {
	kv core.KeyValueStore
}

// NewUserDirectory 创建用户目录实现。
func NewUserDirectory(kv core.KeyValueStore) *UserDirectory {
	return &UserDirectory{kv: kv}
}

var _ core.UserDirectory = (*UserDirectory)(nil)

// Put 写入/覆盖一个用户（同步任务或测试灌数用，引擎不调用）。
func (d *UserDirectory) Put(ctx context.Context, u *core.User) error {
	data, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return d.kv.HSet(ctx, usersKey, u.ID, data)
}

// Lookup 按用户 ID 获取用户；不存在时返回 NOT_FOUND。
func (d *UserDirectory) Lookup(ctx context.Context, userID string) (*core.User, error) {
	data, err := d.kv.HGet(ctx, usersKey, userID)
	if err != nil {
		if core.IsStoreNotFound(err) {
			return nil, core.ErrUserNotFound
		}
		return nil, core.NewDomainError(core.ModuleUsers, core.ErrorCodeUnavailable, "users: directory unavailable")
	}
	var u core.User
	if err := json.Unmarshal(data, &u); err != nil {
		return nil, core.ErrUserNotFound
	}
	return &u, nil
}

// CohortKey 返回用户的分组键（location）；用户不存在时返回 NOT_FOUND。
func (d *UserDirectory) CohortKey(ctx context.Context, userID string) (string, error) {
	u, err := d.Lookup(ctx, userID)
	if err != nil {
		return "", err
	}
	return u.Location, nil
}

// CohortMembers 返回分组内的全部用户 ID，按 ID 升序（确定性输出）。
func (d *UserDirectory) CohortMembers(ctx context.Context, cohortKey string) ([]string, error) {
	fields, err := d.kv.HGetAll(ctx, usersKey)
	if err != nil {
		return nil, core.NewDomainError(core.ModuleUsers, core.ErrorCodeUnavailable, "users: directory unavailable")
	}

	out := make([]string, 0, len(fields))
	for _, data := range fields {
		var u core.User
		if err := json.Unmarshal(data, &u); err != nil {
			continue
		}
		if u.Location == cohortKey {
			out = append(out, u.ID)
		}
	}
	sort.Strings(out)
	return out, nil
}
