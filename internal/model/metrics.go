package model

import (
	"time"
)

// PerformanceSnapshot 某个已发布帖子在某一时刻的互动数据快照。
// 计数字段均为可选，网络不提供的维度保持 nil；写入后不再修改。
type PerformanceSnapshot struct {
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

// TrackedPost 最近成功发布、可轮询指标的帖子视图，不单独落库
type TrackedPost struct {
	PostID        uint64    `json:"post_id"`
	NetworkPostID string    `json:"network_post_id"`
	NetworkType   string    `json:"network_type"`
	OwnerID       uint64    `json:"owner_id"`
	DispatchedAt  time.Time `json:"dispatched_at"`
	Content       string    `json:"content"`
}
