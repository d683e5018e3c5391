package service

import (
	"Crosswire/internal/model"
	"Crosswire/internal/provider"
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeStore struct {
	mu       sync.Mutex
	appended []*model.PerformanceSnapshot
	latest   *model.PerformanceSnapshot
	history  []*model.PerformanceSnapshot
	names    []string
	closed   bool
}

func (f *fakeStore) Append(_ context.Context, snap *model.PerformanceSnapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.appended = append(f.appended, snap)
	return nil
}

func (f *fakeStore) Latest(context.Context, uint64, string) (*model.PerformanceSnapshot, error) {
	return f.latest, nil
}

func (f *fakeStore) History(context.Context, uint64, string, time.Time, time.Time) ([]*model.PerformanceSnapshot, error) {
	return f.history, nil
}

func (f *fakeStore) FieldNames(context.Context, uint64, string) ([]string, error) {
	return f.names, nil
}

func (f *fakeStore) Close() error {
	f.closed = true
	return nil
}

type fakeAccountRepo struct {
	accounts map[uint64]*model.NetworkAccount
}

func (f *fakeAccountRepo) GetAccount(_ context.Context, id uint64) (*model.NetworkAccount, error) {
	return f.accounts[id], nil
}

func (f *fakeAccountRepo) FindByOwnerAndNetwork(_ context.Context, ownerID uint64, networkType string) (*model.NetworkAccount, error) {
	for _, a := range f.accounts {
		if a.OwnerID == ownerID && a.NetworkType == networkType {
			return a, nil
		}
	}
	return nil, nil
}

func (f *fakeAccountRepo) ListByNetwork(_ context.Context, networkType string) ([]*model.NetworkAccount, error) {
	var out []*model.NetworkAccount
	for _, a := range f.accounts {
		if a.NetworkType == networkType {
			out = append(out, a)
		}
	}
	return out, nil
}

func trackedPosts(n int, networkType string) []*model.TrackedPost {
	out := make([]*model.TrackedPost, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, &model.TrackedPost{
			PostID:        uint64(i + 1),
			NetworkPostID: "net-post",
			NetworkType:   networkType,
			OwnerID:       7,
			DispatchedAt:  time.Now().Add(-time.Hour),
		})
	}
	return out
}

func newTestMonitor(repo *fakePostRepo, accounts *fakeAccountRepo, p *fakeProvider, resolver *fakeResolver, sink *fakeStore, sleeps *int) *monitorServiceImpl {
	registry := provider.NewRegistry()
	if p != nil {
		registry.Register(p)
	}
	return &monitorServiceImpl{
		postRepo:    repo,
		accountRepo: accounts,
		resolver:    resolver,
		registry:    registry,
		sink:        sink,
		batchSize:   10,
		batchDelay:  time.Second,
		window:      7 * 24 * time.Hour,
		sleep: func(time.Duration) {
			if sleeps != nil {
				*sleeps++
			}
		},
		now: time.Now,
	}
}

func ownerAccount(networkType string) *fakeAccountRepo {
	return &fakeAccountRepo{accounts: map[uint64]*model.NetworkAccount{
		10: {ID: 10, OwnerID: 7, NetworkType: networkType},
	}}
}

func TestMonitorNetworkPostsBatchThrottling(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		tracked    int
		wantSleeps int
	}{
		{name: "empty", tracked: 0, wantSleeps: 0},
		{name: "single partial batch", tracked: 3, wantSleeps: 0},
		{name: "exactly one batch", tracked: 10, wantSleeps: 0},
		{name: "one and a half batches", tracked: 15, wantSleeps: 1},
		{name: "three batches", tracked: 25, wantSleeps: 2},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			repo := &fakePostRepo{tracked: trackedPosts(tt.tracked, "bluesky")}
			p := &fakeProvider{
				name: "bluesky", required: []string{"token"}, analytics: true,
				snap: &model.PerformanceSnapshot{Likes: int64Ptr(3)},
			}
			sink := &fakeStore{}
			var sleeps int
			svc := newTestMonitor(repo, ownerAccount("bluesky"), p,
				&fakeResolver{creds: provider.Credentials{"token": "x"}}, sink, &sleeps)

			svc.MonitorNetworkPosts(context.Background(), "bluesky")

			if sleeps != tt.wantSleeps {
				t.Errorf("sleeps = %d, want %d", sleeps, tt.wantSleeps)
			}
			if len(sink.appended) != tt.tracked {
				t.Errorf("appended = %d, want %d", len(sink.appended), tt.tracked)
			}
		})
	}
}

func int64Ptr(v int64) *int64 { return &v }

func TestMonitorNetworkPostsSkipsWhenAnalyticsDisabled(t *testing.T) {
	t.Parallel()

	repo := &fakePostRepo{tracked: trackedPosts(5, "linkedin")}
	p := &fakeProvider{name: "linkedin", required: []string{"token"}, analytics: false}
	sink := &fakeStore{}
	svc := newTestMonitor(repo, ownerAccount("linkedin"), p,
		&fakeResolver{creds: provider.Credentials{"token": "x"}}, sink, nil)

	svc.MonitorNetworkPosts(context.Background(), "linkedin")

	if p.fetchCalls != 0 {
		t.Errorf("fetchCalls = %d, want 0", p.fetchCalls)
	}
	if len(sink.appended) != 0 {
		t.Errorf("appended = %d, want 0", len(sink.appended))
	}
}

func TestMonitorNetworkPostsSkipsInvalidCredentials(t *testing.T) {
	t.Parallel()

	repo := &fakePostRepo{tracked: trackedPosts(2, "bluesky")}
	p := &fakeProvider{name: "bluesky", required: []string{"token"}, analytics: true}
	sink := &fakeStore{}
	svc := newTestMonitor(repo, ownerAccount("bluesky"), p,
		&fakeResolver{creds: provider.Credentials{}}, sink, nil)

	svc.MonitorNetworkPosts(context.Background(), "bluesky")

	if p.fetchCalls != 0 {
		t.Errorf("fetchCalls = %d, want 0: invalid credentials must not reach the network", p.fetchCalls)
	}
}

func TestMonitorNetworkPostsFetchErrorDoesNotBlockBatch(t *testing.T) {
	t.Parallel()

	repo := &fakePostRepo{tracked: trackedPosts(4, "bluesky")}
	p := &fakeProvider{
		name: "bluesky", required: []string{"token"}, analytics: true,
		fetchErr: errors.New("rate limited"),
	}
	sink := &fakeStore{}
	svc := newTestMonitor(repo, ownerAccount("bluesky"), p,
		&fakeResolver{creds: provider.Credentials{"token": "x"}}, sink, nil)

	svc.MonitorNetworkPosts(context.Background(), "bluesky")

	if p.fetchCalls != 4 {
		t.Errorf("fetchCalls = %d, want 4: each post is attempted despite failures", p.fetchCalls)
	}
}

func TestPollOnce(t *testing.T) {
	t.Parallel()

	t.Run("success stamps snapshot", func(t *testing.T) {
		t.Parallel()

		repo := &fakePostRepo{tracked: trackedPosts(1, "bluesky")}
		p := &fakeProvider{
			name: "bluesky", required: []string{"token"}, analytics: true,
			snap: &model.PerformanceSnapshot{Likes: int64Ptr(42)},
		}
		sink := &fakeStore{}
		svc := newTestMonitor(repo, ownerAccount("bluesky"), p,
			&fakeResolver{creds: provider.Credentials{"token": "x"}}, sink, nil)

		snap, err := svc.PollOnce(context.Background(), 1, "bluesky", 7)
		if err != nil {
			t.Fatalf("PollOnce: %v", err)
		}
		if snap.PostID != 1 || snap.NetworkType != "bluesky" {
			t.Errorf("snapshot not stamped: %+v", snap)
		}
		if snap.Timestamp.IsZero() {
			t.Error("timestamp not stamped")
		}
		if len(sink.appended) != 1 {
			t.Errorf("appended = %d, want 1", len(sink.appended))
		}
	})

	t.Run("unknown network", func(t *testing.T) {
		t.Parallel()

		svc := newTestMonitor(&fakePostRepo{}, ownerAccount("bluesky"), nil, &fakeResolver{}, &fakeStore{}, nil)
		if _, err := svc.PollOnce(context.Background(), 1, "myspace", 7); !errors.Is(err, ErrUnknownNetwork) {
			t.Errorf("err = %v, want ErrUnknownNetwork", err)
		}
	})

	t.Run("post not tracked", func(t *testing.T) {
		t.Parallel()

		p := &fakeProvider{name: "bluesky", required: []string{"token"}, analytics: true}
		svc := newTestMonitor(&fakePostRepo{}, ownerAccount("bluesky"), p,
			&fakeResolver{creds: provider.Credentials{"token": "x"}}, &fakeStore{}, nil)
		if _, err := svc.PollOnce(context.Background(), 99, "bluesky", 7); !errors.Is(err, ErrPostNotTracked) {
			t.Errorf("err = %v, want ErrPostNotTracked", err)
		}
	})

	t.Run("fetch error propagates", func(t *testing.T) {
		t.Parallel()

		repo := &fakePostRepo{tracked: trackedPosts(1, "bluesky")}
		fetchErr := errors.New("upstream 500")
		p := &fakeProvider{name: "bluesky", required: []string{"token"}, analytics: true, fetchErr: fetchErr}
		svc := newTestMonitor(repo, ownerAccount("bluesky"), p,
			&fakeResolver{creds: provider.Credentials{"token": "x"}}, &fakeStore{}, nil)
		if _, err := svc.PollOnce(context.Background(), 1, "bluesky", 7); !errors.Is(err, fetchErr) {
			t.Errorf("err = %v, want %v", err, fetchErr)
		}
	})
}
