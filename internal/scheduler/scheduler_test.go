package scheduler

import (
	"Crosswire/internal/api/dto"
	"Crosswire/internal/model"
	"Crosswire/internal/provider"
	"context"
	"sync/atomic"
	"testing"
	"time"
)

type fakeDispatchService struct {
	cycles int64
}

func (f *fakeDispatchService) ProcessDuePosts(context.Context) {
	atomic.AddInt64(&f.cycles, 1)
}

func (f *fakeDispatchService) UpcomingPosts(context.Context, int) ([]*dto.UpcomingPostDTO, error) {
	return nil, nil
}

type fakeMonitorService struct {
	polls int64
}

func (f *fakeMonitorService) MonitorNetworkPosts(context.Context, string) {
	atomic.AddInt64(&f.polls, 1)
}

func (f *fakeMonitorService) PollOnce(context.Context, uint64, string, uint64) (*model.PerformanceSnapshot, error) {
	return nil, nil
}

func (f *fakeMonitorService) LatestMetrics(context.Context, uint64, string) (*model.PerformanceSnapshot, error) {
	return nil, nil
}

func (f *fakeMonitorService) MetricsHistory(context.Context, uint64, string, time.Time, time.Time) ([]*model.PerformanceSnapshot, error) {
	return nil, nil
}

func (f *fakeMonitorService) AvailableMetricNames(context.Context, uint64, string) ([]string, error) {
	return nil, nil
}

type fakeTokenService struct {
	checks int64
}

func (f *fakeTokenService) ResolveUsableCredentials(context.Context, *model.NetworkAccount) (provider.Credentials, error) {
	return nil, nil
}

func (f *fakeTokenService) RefreshStaleTokens(context.Context) {
	atomic.AddInt64(&f.checks, 1)
}

func (f *fakeTokenService) BackfillIssuedAt(context.Context) error {
	return nil
}

type analyticsStub struct {
	id        string
	hours     int
	analytics bool
}

func (s *analyticsStub) Identify() string                                { return s.id }
func (s *analyticsStub) RequiredCredentialNames() []string               { return nil }
func (s *analyticsStub) ValidateCredentials(provider.Credentials) bool   { return true }
func (s *analyticsStub) Send(context.Context, string, []string, provider.Credentials) (string, error) {
	return "", nil
}
func (s *analyticsStub) FetchMetrics(context.Context, string, provider.Credentials) (*model.PerformanceSnapshot, error) {
	return nil, nil
}
func (s *analyticsStub) MonitoringIntervalHours() int { return s.hours }
func (s *analyticsStub) SupportsAnalytics() bool      { return s.analytics }

type nopStore struct {
	closed int64
}

func (n *nopStore) Append(context.Context, *model.PerformanceSnapshot) error { return nil }
func (n *nopStore) Latest(context.Context, uint64, string) (*model.PerformanceSnapshot, error) {
	return nil, nil
}
func (n *nopStore) History(context.Context, uint64, string, time.Time, time.Time) ([]*model.PerformanceSnapshot, error) {
	return nil, nil
}
func (n *nopStore) FieldNames(context.Context, uint64, string) ([]string, error) { return nil, nil }
func (n *nopStore) Close() error {
	atomic.AddInt64(&n.closed, 1)
	return nil
}

func TestPostDispatchSchedulerStartIdempotent(t *testing.T) {
	t.Parallel()

	svc := &fakeDispatchService{}
	s := NewPostDispatchScheduler(svc, time.Minute)
	defer s.Stop()

	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := s.Start(); err != nil {
		t.Fatalf("second Start: %v", err)
	}

	if !s.Running() {
		t.Error("Running() = false after Start")
	}
	if got := s.EntryCount(); got != 1 {
		t.Errorf("EntryCount() = %d, want 1: repeated Start must not stack timers", got)
	}
}

func TestPostDispatchSchedulerRestartKeepsSingleTimer(t *testing.T) {
	t.Parallel()

	s := NewPostDispatchScheduler(&fakeDispatchService{}, time.Minute)
	defer s.Stop()

	for i := 0; i < 3; i++ {
		if err := s.Start(); err != nil {
			t.Fatalf("Start #%d: %v", i+1, err)
		}
		s.Stop()
	}
	if err := s.Start(); err != nil {
		t.Fatalf("final Start: %v", err)
	}

	if got := s.EntryCount(); got != 1 {
		t.Errorf("EntryCount() after restarts = %d, want 1: entries survive Stop and must not stack", got)
	}
}

func TestTokenLifecycleManagerRestartKeepsSingleTimer(t *testing.T) {
	t.Parallel()

	m := NewTokenLifecycleManager(&fakeTokenService{}, "0 0 */12 * * *")
	defer m.Stop()

	if err := m.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	m.Stop()
	if err := m.Start(); err != nil {
		t.Fatalf("restart: %v", err)
	}

	if got := len(m.engine.Entries()); got != 1 {
		t.Errorf("entries after restart = %d, want 1", got)
	}
}

func TestPostDispatchSchedulerStopIdempotent(t *testing.T) {
	t.Parallel()

	s := NewPostDispatchScheduler(&fakeDispatchService{}, time.Minute)
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	s.Stop()
	s.Stop()

	if s.Running() {
		t.Error("Running() = true after Stop")
	}
}

func TestPostDispatchSchedulerImmediateCheck(t *testing.T) {
	t.Parallel()

	svc := &fakeDispatchService{}
	s := NewPostDispatchScheduler(svc, time.Hour)
	defer s.Stop()

	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for atomic.LoadInt64(&svc.cycles) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("no dispatch cycle ran shortly after Start")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestPerformanceMonitorRegistersAnalyticsNetworksOnly(t *testing.T) {
	t.Parallel()

	registry := provider.NewRegistry()
	registry.Register(&analyticsStub{id: "bluesky", hours: 1, analytics: true})
	registry.Register(&analyticsStub{id: "linkedin", hours: 1, analytics: false})
	registry.Register(&analyticsStub{id: "x", hours: 12, analytics: true})

	sink := &nopStore{}
	m := NewPerformanceMonitor(&fakeMonitorService{}, registry, sink)
	if err := m.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer m.Stop()

	if got := m.EntryCount(); got != 2 {
		t.Errorf("EntryCount() = %d, want 2: analytics-disabled networks get no timer", got)
	}

	m.Stop()
	if err := m.Start(); err != nil {
		t.Fatalf("restart: %v", err)
	}
	if got := m.EntryCount(); got != 2 {
		t.Errorf("EntryCount() after restart = %d, want 2: per-network entries must not be re-registered", got)
	}
}

func TestPerformanceMonitorStopClosesSink(t *testing.T) {
	t.Parallel()

	sink := &nopStore{}
	m := NewPerformanceMonitor(&fakeMonitorService{}, provider.NewRegistry(), sink)
	if err := m.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	m.Stop()
	m.Stop()

	if got := atomic.LoadInt64(&sink.closed); got != 1 {
		t.Errorf("sink closed %d times, want 1", got)
	}
}

func TestTokenLifecycleManagerImmediateCheck(t *testing.T) {
	t.Parallel()

	svc := &fakeTokenService{}
	m := NewTokenLifecycleManager(svc, "0 0 */12 * * *")
	if err := m.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer m.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for atomic.LoadInt64(&svc.checks) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("no freshness check ran shortly after Start")
		}
		time.Sleep(10 * time.Millisecond)
	}

	if err := m.Start(); err != nil {
		t.Fatalf("second Start: %v", err)
	}
}

func TestCadenceSpec(t *testing.T) {
	t.Parallel()

	tests := []struct {
		hours int
		want  string
	}{
		{hours: 1, want: "0 0 * * * *"},
		{hours: 0, want: "0 0 * * * *"},
		{hours: 12, want: "0 0 */12 * * *"},
		{hours: 6, want: "0 0 */6 * * *"},
	}
	for _, tt := range tests {
		if got := cadenceSpec(tt.hours); got != tt.want {
			t.Errorf("cadenceSpec(%d) = %q, want %q", tt.hours, got, tt.want)
		}
	}
}
