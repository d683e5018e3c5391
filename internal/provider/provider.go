package provider

import (
	"Crosswire/internal/model"
	"context"
	"strings"
)

// Credentials 网络注册下的命名凭证集合
type Credentials map[string]string

// HasAll 检查每个名字都存在且非空白
func (c Credentials) HasAll(names []string) bool {
	if c == nil {
		return len(names) == 0
	}
	for _, name := range names {
		if strings.TrimSpace(c[name]) == "" {
			return false
		}
	}
	return true
}

// Provider 单个社交网络的发布与指标拉取实现。
// Send 和 FetchMetrics 每次调用只尝试一次，不做内部重试。
type Provider interface {
	// Identify 返回小写的网络标识，作为注册表的 key
	Identify() string
	// RequiredCredentialNames 返回该网络必需的凭证名
	RequiredCredentialNames() []string
	// ValidateCredentials 校验必需凭证均存在且非空白，凭证缺失时返回 false 而非报错
	ValidateCredentials(creds Credentials) bool
	// Send 发布内容，成功返回网络分配的帖子 ID
	Send(ctx context.Context, content string, attachmentPaths []string, creds Credentials) (string, error)
	// FetchMetrics 拉取一份互动数据快照
	FetchMetrics(ctx context.Context, networkPostID string, creds Credentials) (*model.PerformanceSnapshot, error)
	// MonitoringIntervalHours 指标轮询周期，按网络的限流策略选取
	MonitoringIntervalHours() int
	// SupportsAnalytics 网络是否开放互动数据；关闭的网络跳过定时轮询
	SupportsAnalytics() bool
}

// TokenRefresher 凭证会过期的网络额外实现的刷新能力
type TokenRefresher interface {
	// RefreshableCredentialName 会过期的凭证名
	RefreshableCredentialName() string
	// RefreshToken 用当前凭证换取新值
	RefreshToken(ctx context.Context, creds Credentials) (string, error)
}

func int64Ptr(v int64) *int64 {
	return &v
}
