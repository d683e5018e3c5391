package metricstore

import (
	"Crosswire/internal/model"
	"context"
	"time"
)

// Store 互动数据时序存储。快照按 (post_id, network_type, timestamp) 去重，只追加不修改。
type Store interface {
	Append(ctx context.Context, snap *model.PerformanceSnapshot) error
	Latest(ctx context.Context, postID uint64, networkType string) (*model.PerformanceSnapshot, error)
	History(ctx context.Context, postID uint64, networkType string, start, end time.Time) ([]*model.PerformanceSnapshot, error)
	// FieldNames 发现某帖子实际出现过的指标名
	FieldNames(ctx context.Context, postID uint64, networkType string) ([]string, error)
	Close() error
}
