package scheduler

import (
	"Crosswire/internal/pkg/logger"
	"Crosswire/internal/service"
	"context"
	"fmt"
	log "log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

// TokenLifecycleManager 凭证新鲜度巡检。启动时立即做一次全量检查，
// 之后按配置的 cron 表达式周期触发。
type TokenLifecycleManager struct {
	engine    *cron.Cron
	svc       service.TokenService
	checkCron string

	mu      sync.Mutex
	running bool
}

func NewTokenLifecycleManager(svc service.TokenService, checkCron string) *TokenLifecycleManager {
	return &TokenLifecycleManager{
		engine:    cron.New(cron.WithSeconds()),
		svc:       svc,
		checkCron: checkCron,
	}
}

func (t *TokenLifecycleManager) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		return nil
	}

	go t.check()

	// cron 条目跨 Stop 存活，重启时不可重复注册
	if len(t.engine.Entries()) == 0 {
		if _, err := t.engine.AddFunc(t.checkCron, t.check); err != nil {
			return fmt.Errorf("failed to register token check: %w", err)
		}
	}

	t.engine.Start()
	t.running = true
	log.Info("token lifecycle manager started", "cron", t.checkCron)
	return nil
}

func (t *TokenLifecycleManager) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.running {
		return
	}
	t.engine.Stop()
	t.running = false
	log.Info("token lifecycle manager stopped")
}

func (t *TokenLifecycleManager) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

func (t *TokenLifecycleManager) check() {
	traceID := "token-" + uuid.NewString()
	ctx := context.WithValue(context.Background(), logger.TraceIDKey, traceID)
	t.svc.RefreshStaleTokens(ctx)
}
