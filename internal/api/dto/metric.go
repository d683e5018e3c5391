package dto

import "time"

// MetricSnapshotDTO 一次指标快照
type MetricSnapshotDTO struct {
	PostID           uint64            `json:"post_id"`
	NetworkType      string            `json:"network_type"`
	Timestamp        time.Time         `json:"timestamp"`
	Views            *int64            `json:"views,omitempty"`
	Likes            *int64            `json:"likes,omitempty"`
	Shares           *int64            `json:"shares,omitempty"`
	Comments         *int64            `json:"comments,omitempty"`
	Reposts          *int64            `json:"reposts,omitempty"`
	Reach            *int64            `json:"reach,omitempty"`
	Impressions      *int64            `json:"impressions,omitempty"`
	Engagement       *float64          `json:"engagement,omitempty"`
	ClickThroughRate *float64          `json:"click_through_rate,omitempty"`
	Reactions        map[string]int64  `json:"reactions,omitempty"`
	CustomMetrics    map[string]string `json:"custom_metrics,omitempty"`
}

// MetricHistoryQueryDTO 历史区间查询参数，时间为 Unix 秒
type MetricHistoryQueryDTO struct {
	Start int64 `form:"start" binding:"required,min=1"`
	End   int64 `form:"end" binding:"required,min=1,gtefield=Start"`
}
