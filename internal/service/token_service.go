package service

import (
	"Crosswire/internal/model"
	"Crosswire/internal/provider"
	"Crosswire/internal/repository"
	"context"
	log "log/slog"
	"time"
)

// CredentialResolver 在每次 send/fetch 前解析可用凭证
type CredentialResolver interface {
	ResolveUsableCredentials(ctx context.Context, account *model.NetworkAccount) (provider.Credentials, error)
}

// TokenService 维护会过期凭证的新鲜度。
// 凭证状态只有三种：Fresh（窗口内）、Stale（超窗待刷新）、刷新失败仍回落到 Stale 继续使用。
type TokenService interface {
	CredentialResolver
	// RefreshStaleTokens 周期检查：刷新所有超过新鲜度窗口的凭证
	RefreshStaleTokens(ctx context.Context)
	// BackfillIssuedAt 为存量注册一次性补种签发时间
	BackfillIssuedAt(ctx context.Context) error
}

type tokenServiceImpl struct {
	credRepo    repository.CredentialRepo
	accountRepo repository.AccountRepo
	registry    *provider.Registry
	freshness   time.Duration
	now         func() time.Time
}

func NewTokenService(
	credRepo repository.CredentialRepo,
	accountRepo repository.AccountRepo,
	registry *provider.Registry,
	freshnessDays int,
) TokenService {
	return &tokenServiceImpl{
		credRepo:    credRepo,
		accountRepo: accountRepo,
		registry:    registry,
		freshness:   time.Duration(freshnessDays) * 24 * time.Hour,
		now:         time.Now,
	}
}

// ResolveUsableCredentials 凭证超窗时同步尝试刷新；刷新失败返回旧值，
// 绝不因为刷新问题阻断调用方的发布或拉取。
func (s *tokenServiceImpl) ResolveUsableCredentials(ctx context.Context, account *model.NetworkAccount) (provider.Credentials, error) {
	creds, err := s.credRepo.GetCredentialMap(ctx, account.ID)
	if err != nil {
		return nil, err
	}

	p := s.registry.Get(account.NetworkType)
	refresher, ok := p.(provider.TokenRefresher)
	if !ok {
		return creds, nil
	}

	name := refresher.RefreshableCredentialName()
	cred, err := s.credRepo.GetCredential(ctx, account.ID, name)
	if err != nil {
		log.WarnContext(ctx, "failed to load refreshable credential, using stored value",
			"account_id", account.ID, "name", name, "err", err)
		return creds, nil
	}
	if cred == nil || cred.IssuedAt == nil {
		// 无签发时间，无法判断新鲜度
		return creds, nil
	}

	if s.now().Sub(*cred.IssuedAt) < s.freshness {
		return creds, nil
	}

	newValue, err := refresher.RefreshToken(ctx, provider.Credentials(creds))
	if err != nil {
		log.WarnContext(ctx, "token refresh failed, serving stale credential",
			"account_id", account.ID, "network", account.NetworkType, "err", err)
		return creds, nil
	}

	if err = s.credRepo.UpdateValue(ctx, account.ID, name, newValue, s.now()); err != nil {
		log.ErrorContext(ctx, "failed to persist refreshed token",
			"account_id", account.ID, "network", account.NetworkType, "err", err)
	}
	creds[name] = newValue

	return creds, nil
}

// RefreshStaleTokens 遍历所有支持刷新的网络及其账号
func (s *tokenServiceImpl) RefreshStaleTokens(ctx context.Context) {
	var checked, refreshed, failed int

	for _, p := range s.registry.List() {
		refresher, ok := p.(provider.TokenRefresher)
		if !ok {
			continue
		}

		accounts, err := s.accountRepo.ListByNetwork(ctx, p.Identify())
		if err != nil {
			log.ErrorContext(ctx, "failed to list accounts for token check",
				"network", p.Identify(), "err", err)
			continue
		}

		name := refresher.RefreshableCredentialName()
		for _, account := range accounts {
			checked++

			cred, err := s.credRepo.GetCredential(ctx, account.ID, name)
			if err != nil {
				log.ErrorContext(ctx, "failed to load credential for token check",
					"account_id", account.ID, "err", err)
				failed++
				continue
			}
			if cred == nil || cred.IssuedAt == nil {
				continue
			}
			if s.now().Sub(*cred.IssuedAt) < s.freshness {
				continue
			}

			creds, err := s.credRepo.GetCredentialMap(ctx, account.ID)
			if err != nil {
				failed++
				continue
			}

			newValue, err := refresher.RefreshToken(ctx, provider.Credentials(creds))
			if err != nil {
				log.WarnContext(ctx, "token refresh failed, stale token stays in use",
					"account_id", account.ID, "network", account.NetworkType, "err", err)
				failed++
				continue
			}

			if err = s.credRepo.UpdateValue(ctx, account.ID, name, newValue, s.now()); err != nil {
				log.ErrorContext(ctx, "failed to persist refreshed token",
					"account_id", account.ID, "err", err)
				failed++
				continue
			}
			refreshed++
		}
	}

	log.InfoContext(ctx, "token freshness check finished",
		"checked", checked, "refreshed", refreshed, "failed", failed)
}

func (s *tokenServiceImpl) BackfillIssuedAt(ctx context.Context) error {
	for _, p := range s.registry.List() {
		refresher, ok := p.(provider.TokenRefresher)
		if !ok {
			continue
		}
		affected, err := s.credRepo.BackfillIssuedAt(ctx, p.Identify(), refresher.RefreshableCredentialName(), s.now())
		if err != nil {
			return err
		}
		if affected > 0 {
			log.InfoContext(ctx, "seeded issued_at for existing registrations",
				"network", p.Identify(), "rows", affected)
		}
	}
	return nil
}
