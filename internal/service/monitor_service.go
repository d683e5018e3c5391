package service

import (
	"Crosswire/internal/model"
	"Crosswire/internal/pkg/consts"
	"Crosswire/internal/pkg/metricstore"
	"Crosswire/internal/provider"
	"Crosswire/internal/repository"
	"context"
	"fmt"
	log "log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// MonitorService 已发布帖子的互动数据轮询与查询
type MonitorService interface {
	// MonitorNetworkPosts 轮询某网络最近 7 天成功发布的帖子，
	// 按固定批次并发拉取，批次间节流
	MonitorNetworkPosts(ctx context.Context, networkType string)
	// PollOnce 管理入口：对单个帖子立即拉取一次指标，错误向调用方传播
	PollOnce(ctx context.Context, postID uint64, networkType string, ownerID uint64) (*model.PerformanceSnapshot, error)
	LatestMetrics(ctx context.Context, postID uint64, networkType string) (*model.PerformanceSnapshot, error)
	MetricsHistory(ctx context.Context, postID uint64, networkType string, start, end time.Time) ([]*model.PerformanceSnapshot, error)
	AvailableMetricNames(ctx context.Context, postID uint64, networkType string) ([]string, error)
}

type monitorServiceImpl struct {
	postRepo    repository.ScheduledPostRepo
	accountRepo repository.AccountRepo
	resolver    CredentialResolver
	registry    *provider.Registry
	sink        metricstore.Store

	batchSize  int
	batchDelay time.Duration
	window     time.Duration
	sleep      func(time.Duration)
	now        func() time.Time
}

func NewMonitorService(
	postRepo repository.ScheduledPostRepo,
	accountRepo repository.AccountRepo,
	resolver CredentialResolver,
	registry *provider.Registry,
	sink metricstore.Store,
) MonitorService {
	return &monitorServiceImpl{
		postRepo:    postRepo,
		accountRepo: accountRepo,
		resolver:    resolver,
		registry:    registry,
		sink:        sink,
		batchSize:   consts.MonitorBatchSize,
		batchDelay:  consts.MonitorBatchDelay,
		window:      consts.TrackedWindow,
		sleep:       time.Sleep,
		now:         time.Now,
	}
}

func (s *monitorServiceImpl) MonitorNetworkPosts(ctx context.Context, networkType string) {
	p := s.registry.Get(networkType)
	if p == nil {
		log.ErrorContext(ctx, "no provider registered, aborting metrics poll", "network_type", networkType)
		return
	}
	if !p.SupportsAnalytics() {
		// 该网络不开放互动数据，静默跳过
		return
	}

	tracked, err := s.postRepo.FindTracked(ctx, networkType, s.now().Add(-s.window))
	if err != nil {
		log.ErrorContext(ctx, "failed to load tracked posts", "network_type", networkType, "err", err)
		return
	}
	if len(tracked) == 0 {
		return
	}

	var failed int64
	for start := 0; start < len(tracked); start += s.batchSize {
		end := start + s.batchSize
		if end > len(tracked) {
			end = len(tracked)
		}

		var wg sync.WaitGroup
		for _, tp := range tracked[start:end] {
			wg.Add(1)
			go func(tp *model.TrackedPost) {
				defer wg.Done()
				if err := s.pollPost(ctx, p, tp); err != nil {
					atomic.AddInt64(&failed, 1)
					log.ErrorContext(ctx, "metrics poll failed",
						"post_id", tp.PostID, "network_type", networkType, "err", err)
				}
			}(tp)
		}
		wg.Wait()

		// 最后一批之后不再等待
		if end < len(tracked) {
			s.sleep(s.batchDelay)
		}
	}

	log.InfoContext(ctx, "metrics poll finished",
		"network_type", networkType, "tracked", len(tracked), "failed", failed)
}

// pollPost 拉取并写入单条帖子的指标，凭证无效仅告警跳过
func (s *monitorServiceImpl) pollPost(ctx context.Context, p provider.Provider, tp *model.TrackedPost) error {
	account, err := s.accountRepo.FindByOwnerAndNetwork(ctx, tp.OwnerID, tp.NetworkType)
	if err != nil {
		return fmt.Errorf("failed to load account: %w", err)
	}
	if account == nil {
		log.WarnContext(ctx, "no account for tracked post, skipping",
			"post_id", tp.PostID, "owner_id", tp.OwnerID)
		return nil
	}

	creds, err := s.resolver.ResolveUsableCredentials(ctx, account)
	if err != nil {
		return fmt.Errorf("failed to resolve credentials: %w", err)
	}
	if !p.ValidateCredentials(creds) {
		log.WarnContext(ctx, "invalid credentials for tracked post, skipping",
			"post_id", tp.PostID, "network_type", tp.NetworkType)
		return nil
	}

	snap, err := p.FetchMetrics(ctx, tp.NetworkPostID, creds)
	if err != nil {
		return err
	}
	if snap == nil {
		log.WarnContext(ctx, "provider returned no metrics",
			"post_id", tp.PostID, "network_type", tp.NetworkType)
		return nil
	}

	s.stamp(snap, tp.PostID, tp.NetworkType)
	if err = s.sink.Append(ctx, snap); err != nil {
		return fmt.Errorf("failed to append metrics: %w", err)
	}
	return nil
}

func (s *monitorServiceImpl) PollOnce(ctx context.Context, postID uint64, networkType string, ownerID uint64) (*model.PerformanceSnapshot, error) {
	p := s.registry.Get(networkType)
	if p == nil {
		return nil, ErrUnknownNetwork
	}

	tp, err := s.postRepo.FindTrackedOne(ctx, postID, networkType)
	if err != nil {
		return nil, err
	}
	if tp == nil {
		return nil, ErrPostNotTracked
	}

	account, err := s.accountRepo.FindByOwnerAndNetwork(ctx, ownerID, networkType)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}

	creds, err := s.resolver.ResolveUsableCredentials(ctx, account)
	if err != nil {
		return nil, err
	}
	if !p.ValidateCredentials(creds) {
		return nil, ErrCredentialInvalid
	}

	snap, err := p.FetchMetrics(ctx, tp.NetworkPostID, creds)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return nil, fmt.Errorf("provider %s returned no metrics for post %d", networkType, postID)
	}

	s.stamp(snap, postID, networkType)
	if err = s.sink.Append(ctx, snap); err != nil {
		return nil, err
	}
	return snap, nil
}

func (s *monitorServiceImpl) LatestMetrics(ctx context.Context, postID uint64, networkType string) (*model.PerformanceSnapshot, error) {
	return s.sink.Latest(ctx, postID, networkType)
}

func (s *monitorServiceImpl) MetricsHistory(ctx context.Context, postID uint64, networkType string, start, end time.Time) ([]*model.PerformanceSnapshot, error) {
	return s.sink.History(ctx, postID, networkType, start, end)
}

func (s *monitorServiceImpl) AvailableMetricNames(ctx context.Context, postID uint64, networkType string) ([]string, error) {
	return s.sink.FieldNames(ctx, postID, networkType)
}

func (s *monitorServiceImpl) stamp(snap *model.PerformanceSnapshot, postID uint64, networkType string) {
	snap.PostID = postID
	if snap.NetworkType == "" {
		snap.NetworkType = networkType
	}
	if snap.Timestamp.IsZero() {
		snap.Timestamp = s.now()
	}
}
