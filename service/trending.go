package service

import (
	"context"

	"github.com/rushteam/shoprec/cohort"
	"github.com/rushteam/shoprec/core"
)

// RefreshTrending 重算一个分组的趋势列表并写入 KeyValueStore 快照
// （zset `trending:{cohort}`），供 recall.trending 跨进程读取。
// 通常由定时任务调用；引擎在线路径不写存储。
func (s *Service) RefreshTrending(ctx context.Context, kv core.KeyValueStore, cohortKey string) ([]cohort.ProductScore, error) {
	top, err := s.cohortTop(ctx, cohortKey)
	if err != nil {
		return nil, err
	}
	if err := cohort.Snapshot(ctx, kv, cohortKey, top); err != nil {
		return nil, err
	}
	return top, nil
}
