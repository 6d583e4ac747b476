package store

import (
	"context"
	"encoding/json"

	"github.com/rushteam/shoprec/core"
)

// 日志存储 key 约定
const (
	logKeyGlobal     = "interactions"       // 全量日志（列表）
	logKeyUserPrefix = "interactions:user:" // 按用户分片的日志（列表）
)

// InteractionLog 是 KeyValueStore 之上的行为日志实现（append-only）。
// 同一条记录双写：全量列表 + 按用户分片列表，读取路径按过滤条件选更小的分片。
//
// 快照语义：LRange 返回的是拷贝，Read 期间的并发 Append 不会
// 影响已经返回的快照——单次计算的内部一致性由此保证。
type InteractionLog struct {
	kv core.KeyValueStore
}

// NewInteractionLog 创建行为日志。
func NewInteractionLog(kv core.KeyValueStore) *InteractionLog {
	return &InteractionLog{kv: kv}
}

var _ core.InteractionLog = (*InteractionLog)(nil)

// Append 追加一条行为记录。引擎从不调用此方法（只读），由 UI 层写入。
// 记录一旦写入不可变：这里只有 RPush，没有任何修改/删除路径。
func (l *InteractionLog) Append(ctx context.Context, rec core.InteractionRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if err := l.kv.RPush(ctx, logKeyGlobal, data); err != nil {
		return core.ErrLogUnavailable
	}
	if err := l.kv.RPush(ctx, logKeyUserPrefix+rec.UserID, data); err != nil {
		return core.ErrLogUnavailable
	}
	return nil
}

// Read 按过滤条件读取行为记录快照。
// 单用户过滤走用户分片；分组过滤逐成员读取分片；否则读全量列表。
func (l *InteractionLog) Read(ctx context.Context, filter core.LogFilter) ([]core.InteractionRecord, error) {
	var keys []string
	switch {
	case filter.UserID != "":
		keys = []string{logKeyUserPrefix + filter.UserID}
	case len(filter.UserIDs) > 0:
		keys = make([]string, 0, len(filter.UserIDs))
		for _, id := range filter.UserIDs {
			keys = append(keys, logKeyUserPrefix+id)
		}
	default:
		keys = []string{logKeyGlobal}
	}

	out := make([]core.InteractionRecord, 0)
	for _, key := range keys {
		raws, err := l.kv.LRange(ctx, key, 0, -1)
		if err != nil {
			return nil, core.ErrLogUnavailable
		}
		for _, raw := range raws {
			var rec core.InteractionRecord
			if err := json.Unmarshal(raw, &rec); err != nil {
				// 坏记录跳过：单条损坏不应让整次读取失败
				continue
			}
			if filter.Match(rec) {
				out = append(out, rec)
			}
		}
	}
	return out, nil
}
