package service

import (
	"Crosswire/internal/model"
	"Crosswire/internal/provider"
	"context"
	"errors"
	"testing"
	"time"
)

type fakeCredRepo struct {
	creds map[uint64]map[string]string
	byAge map[string]*model.AccountCredential

	updates    []updateCall
	backfilled int64
}

type updateCall struct {
	accountID uint64
	name      string
	value     string
}

func (f *fakeCredRepo) GetCredentialMap(_ context.Context, accountID uint64) (map[string]string, error) {
	out := make(map[string]string, len(f.creds[accountID]))
	for k, v := range f.creds[accountID] {
		out[k] = v
	}
	return out, nil
}

func (f *fakeCredRepo) GetCredential(_ context.Context, _ uint64, name string) (*model.AccountCredential, error) {
	return f.byAge[name], nil
}

func (f *fakeCredRepo) UpdateValue(_ context.Context, accountID uint64, name, value string, _ time.Time) error {
	f.updates = append(f.updates, updateCall{accountID: accountID, name: name, value: value})
	return nil
}

func (f *fakeCredRepo) BackfillIssuedAt(context.Context, string, string, time.Time) (int64, error) {
	return f.backfilled, nil
}

type refreshableProvider struct {
	fakeProvider
	refreshName  string
	newValue     string
	refreshErr   error
	refreshCalls int
}

func (f *refreshableProvider) RefreshableCredentialName() string { return f.refreshName }

func (f *refreshableProvider) RefreshToken(context.Context, provider.Credentials) (string, error) {
	f.refreshCalls++
	return f.newValue, f.refreshErr
}

func timePtr(t time.Time) *time.Time { return &t }

func newTestToken(credRepo *fakeCredRepo, accountRepo *fakeAccountRepo, p provider.Provider, now time.Time) *tokenServiceImpl {
	registry := provider.NewRegistry()
	registry.Register(p)
	return &tokenServiceImpl{
		credRepo:    credRepo,
		accountRepo: accountRepo,
		registry:    registry,
		freshness:   45 * 24 * time.Hour,
		now:         func() time.Time { return now },
	}
}

func TestResolveUsableCredentials(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	account := &model.NetworkAccount{ID: 10, OwnerID: 7, NetworkType: "facebook"}

	tests := []struct {
		name        string
		issuedAt    *time.Time
		refreshErr  error
		wantToken   string
		wantRefresh int
		wantUpdates int
	}{
		{
			name:        "fresh token untouched",
			issuedAt:    timePtr(now.Add(-10 * 24 * time.Hour)),
			wantToken:   "old",
			wantRefresh: 0,
		},
		{
			name:        "stale token refreshed",
			issuedAt:    timePtr(now.Add(-50 * 24 * time.Hour)),
			wantToken:   "new",
			wantRefresh: 1,
			wantUpdates: 1,
		},
		{
			name:        "boundary exactly at window refreshes",
			issuedAt:    timePtr(now.Add(-45 * 24 * time.Hour)),
			wantToken:   "new",
			wantRefresh: 1,
			wantUpdates: 1,
		},
		{
			name:        "refresh failure serves stale",
			issuedAt:    timePtr(now.Add(-50 * 24 * time.Hour)),
			refreshErr:  errors.New("exchange rejected"),
			wantToken:   "old",
			wantRefresh: 1,
		},
		{
			name:      "missing issued_at treated as unknown",
			issuedAt:  nil,
			wantToken: "old",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			credRepo := &fakeCredRepo{
				creds: map[uint64]map[string]string{10: {"access_token": "old"}},
				byAge: map[string]*model.AccountCredential{
					"access_token": {AccountID: 10, Name: "access_token", Value: "old", IssuedAt: tt.issuedAt},
				},
			}
			p := &refreshableProvider{
				fakeProvider: fakeProvider{name: "facebook", required: []string{"access_token"}},
				refreshName:  "access_token",
				newValue:     "new",
				refreshErr:   tt.refreshErr,
			}
			svc := newTestToken(credRepo, &fakeAccountRepo{}, p, now)

			creds, err := svc.ResolveUsableCredentials(context.Background(), account)
			if err != nil {
				t.Fatalf("ResolveUsableCredentials: %v", err)
			}
			if creds["access_token"] != tt.wantToken {
				t.Errorf("token = %q, want %q", creds["access_token"], tt.wantToken)
			}
			if p.refreshCalls != tt.wantRefresh {
				t.Errorf("refreshCalls = %d, want %d", p.refreshCalls, tt.wantRefresh)
			}
			if len(credRepo.updates) != tt.wantUpdates {
				t.Errorf("updates = %d, want %d", len(credRepo.updates), tt.wantUpdates)
			}
		})
	}
}

func TestResolveUsableCredentialsNonRefreshableNetwork(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	credRepo := &fakeCredRepo{
		creds: map[uint64]map[string]string{10: {"access_token": "old"}},
	}
	p := &fakeProvider{name: "x", required: []string{"access_token"}}
	svc := newTestToken(credRepo, &fakeAccountRepo{}, p, now)

	creds, err := svc.ResolveUsableCredentials(context.Background(),
		&model.NetworkAccount{ID: 10, NetworkType: "x"})
	if err != nil {
		t.Fatalf("ResolveUsableCredentials: %v", err)
	}
	if creds["access_token"] != "old" {
		t.Errorf("token = %q, want old", creds["access_token"])
	}
}

func TestRefreshStaleTokens(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	credRepo := &fakeCredRepo{
		creds: map[uint64]map[string]string{10: {"access_token": "old"}},
		byAge: map[string]*model.AccountCredential{
			"access_token": {AccountID: 10, Name: "access_token", Value: "old",
				IssuedAt: timePtr(now.Add(-60 * 24 * time.Hour))},
		},
	}
	accountRepo := &fakeAccountRepo{accounts: map[uint64]*model.NetworkAccount{
		10: {ID: 10, OwnerID: 7, NetworkType: "facebook"},
	}}
	p := &refreshableProvider{
		fakeProvider: fakeProvider{name: "facebook", required: []string{"access_token"}},
		refreshName:  "access_token",
		newValue:     "new",
	}
	svc := newTestToken(credRepo, accountRepo, p, now)

	svc.RefreshStaleTokens(context.Background())

	if p.refreshCalls != 1 {
		t.Errorf("refreshCalls = %d, want 1", p.refreshCalls)
	}
	if len(credRepo.updates) != 1 || credRepo.updates[0].value != "new" {
		t.Errorf("updates = %+v, want one update with value new", credRepo.updates)
	}
}
