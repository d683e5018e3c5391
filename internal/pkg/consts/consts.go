package consts

import "time"

const (
	// MonitorBatchSize 单批并发拉取指标的帖子数
	MonitorBatchSize = 10
	// MonitorBatchDelay 批次之间的节流间隔
	MonitorBatchDelay = 1 * time.Second
	// TrackedWindow 指标轮询只覆盖最近成功发布的帖子
	TrackedWindow = 7 * 24 * time.Hour
)

const (
	// DispatchClaimTTL 发布占位锁的过期时间
	DispatchClaimTTL = 10 * time.Minute
	// UpcomingCacheTTL 待发布列表缓存时间
	UpcomingCacheTTL = 30 * time.Second
)

const (
	NetworkBluesky  = "bluesky"
	NetworkMastodon = "mastodon"
	NetworkFacebook = "facebook"
	NetworkLinkedIn = "linkedin"
	NetworkX        = "x"
)
