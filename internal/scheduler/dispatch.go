package scheduler

import (
	"Crosswire/internal/pkg/logger"
	"Crosswire/internal/service"
	"context"
	"fmt"
	log "log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

// PostDispatchScheduler 到期帖子轮询循环。Start 立即执行一次检查，
// 之后按固定间隔触发；Start/Stop 均幂等。
type PostDispatchScheduler struct {
	engine   *cron.Cron
	svc      service.DispatchService
	interval time.Duration

	mu      sync.Mutex
	running bool
}

func NewPostDispatchScheduler(svc service.DispatchService, interval time.Duration) *PostDispatchScheduler {
	return &PostDispatchScheduler{
		engine:   cron.New(cron.WithSeconds()),
		svc:      svc,
		interval: interval,
	}
}

func (s *PostDispatchScheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}

	go s.tick()

	// cron 条目跨 Stop 存活，重启时不可重复注册
	if len(s.engine.Entries()) == 0 {
		spec := fmt.Sprintf("@every %s", s.interval)
		if _, err := s.engine.AddFunc(spec, s.tick); err != nil {
			return fmt.Errorf("failed to register dispatch tick: %w", err)
		}
	}

	s.engine.Start()
	s.running = true
	log.Info("post dispatch scheduler started", "interval", s.interval)
	return nil
}

// Stop 只阻止后续触发，进行中的一轮检查允许跑完
func (s *PostDispatchScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.engine.Stop()
	s.running = false
	log.Info("post dispatch scheduler stopped")
}

func (s *PostDispatchScheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// EntryCount 已注册的定时触发数
func (s *PostDispatchScheduler) EntryCount() int {
	return len(s.engine.Entries())
}

func (s *PostDispatchScheduler) tick() {
	traceID := "dispatch-" + uuid.NewString()
	ctx := context.WithValue(context.Background(), logger.TraceIDKey, traceID)
	s.svc.ProcessDuePosts(ctx)
}
