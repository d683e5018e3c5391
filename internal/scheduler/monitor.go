package scheduler

import (
	"Crosswire/internal/pkg/logger"
	"Crosswire/internal/pkg/metricstore"
	"Crosswire/internal/provider"
	"Crosswire/internal/service"
	"context"
	"fmt"
	log "log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

// PerformanceMonitor 按网络各自的监控周期拉取互动指标。
// 每个支持分析的网络注册一条独立的 cron 条目，周期由 Provider 自报。
type PerformanceMonitor struct {
	engine   *cron.Cron
	svc      service.MonitorService
	registry *provider.Registry
	sink     metricstore.Store

	mu      sync.Mutex
	running bool
}

func NewPerformanceMonitor(svc service.MonitorService, registry *provider.Registry, sink metricstore.Store) *PerformanceMonitor {
	return &PerformanceMonitor{
		engine:   cron.New(cron.WithSeconds()),
		svc:      svc,
		registry: registry,
		sink:     sink,
	}
}

func (m *PerformanceMonitor) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return nil
	}

	// cron 条目跨 Stop 存活，重启时不可重复注册
	if len(m.engine.Entries()) == 0 {
		for _, name := range m.registry.Keys() {
			p := m.registry.Get(name)
			if p == nil || !p.SupportsAnalytics() {
				continue
			}
			networkType := name
			spec := cadenceSpec(p.MonitoringIntervalHours())
			if _, err := m.engine.AddFunc(spec, func() { m.poll(networkType) }); err != nil {
				return fmt.Errorf("failed to register monitor for %s: %w", networkType, err)
			}
			log.Info("performance monitor registered", "network", networkType, "spec", spec)
		}
	}

	m.engine.Start()
	m.running = true
	return nil
}

// Stop 停止后续轮询并释放指标存储连接
func (m *PerformanceMonitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running {
		return
	}
	m.engine.Stop()
	if err := m.sink.Close(); err != nil {
		log.Warn("failed to close metric store", "err", err)
	}
	m.running = false
	log.Info("performance monitor stopped")
}

func (m *PerformanceMonitor) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

func (m *PerformanceMonitor) EntryCount() int {
	return len(m.engine.Entries())
}

func (m *PerformanceMonitor) poll(networkType string) {
	traceID := "monitor-" + uuid.NewString()
	ctx := context.WithValue(context.Background(), logger.TraceIDKey, traceID)
	m.svc.MonitorNetworkPosts(ctx, networkType)
}

// cadenceSpec 把小时周期换算为整点对齐的 cron 表达式
func cadenceSpec(hours int) string {
	if hours <= 1 {
		return "0 0 * * * *"
	}
	return fmt.Sprintf("0 0 */%d * * *", hours)
}
