package provider

import (
	"Crosswire/internal/model"
	"Crosswire/internal/pkg/consts"
	"Crosswire/internal/pkg/storage"
	"bytes"
	"context"
	"fmt"
	log "log/slog"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// mastodonProvider 对接任意 Mastodon 实例，实例地址来自凭证
type mastodonProvider struct {
	client *resty.Client
	loader storage.ObjectLoader
}

func NewMastodonProvider(loader storage.ObjectLoader) Provider {
	return &mastodonProvider{
		client: resty.New().SetTimeout(20 * time.Second),
		loader: loader,
	}
}

func (p *mastodonProvider) Identify() string {
	return consts.NetworkMastodon
}

func (p *mastodonProvider) RequiredCredentialNames() []string {
	return []string{"instance_url", "access_token"}
}

func (p *mastodonProvider) ValidateCredentials(creds Credentials) bool {
	return creds != nil && creds.HasAll(p.RequiredCredentialNames())
}

func (p *mastodonProvider) MonitoringIntervalHours() int {
	return 1
}

func (p *mastodonProvider) SupportsAnalytics() bool {
	return true
}

func (p *mastodonProvider) Send(ctx context.Context, content string, attachmentPaths []string, creds Credentials) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("mastodon: empty content")
	}

	instance := strings.TrimSuffix(creds["instance_url"], "/")
	token := creds["access_token"]

	var mediaIDs []string
	for _, path := range attachmentPaths {
		data, _, err := p.loader.Load(ctx, path)
		if err != nil {
			log.WarnContext(ctx, "failed to load attachment, skipping", "path", path, "err", err)
			continue
		}

		var uploaded struct {
			ID string `json:"id"`
		}
		resp, err := p.client.R().
			SetContext(ctx).
			SetAuthToken(token).
			SetFileReader("file", fileNameOf(path), bytes.NewReader(data)).
			SetResult(&uploaded).
			Post(instance + "/api/v2/media")
		if err != nil {
			return "", fmt.Errorf("mastodon upload media: %w", err)
		}
		if resp.IsError() {
			return "", fmt.Errorf("mastodon upload media: status %d", resp.StatusCode())
		}
		mediaIDs = append(mediaIDs, uploaded.ID)
	}

	body := map[string]interface{}{
		"status": content,
	}
	if len(mediaIDs) > 0 {
		body["media_ids"] = mediaIDs
	}

	var status struct {
		ID string `json:"id"`
	}
	resp, err := p.client.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetBody(body).
		SetResult(&status).
		Post(instance + "/api/v1/statuses")
	if err != nil {
		return "", fmt.Errorf("mastodon create status: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("mastodon create status: status %d", resp.StatusCode())
	}

	return status.ID, nil
}

func (p *mastodonProvider) FetchMetrics(ctx context.Context, networkPostID string, creds Credentials) (*model.PerformanceSnapshot, error) {
	instance := strings.TrimSuffix(creds["instance_url"], "/")

	var status struct {
		FavouritesCount int64 `json:"favourites_count"`
		ReblogsCount    int64 `json:"reblogs_count"`
		RepliesCount    int64 `json:"replies_count"`
	}
	resp, err := p.client.R().
		SetContext(ctx).
		SetAuthToken(creds["access_token"]).
		SetResult(&status).
		Get(instance + "/api/v1/statuses/" + networkPostID)
	if err != nil {
		return nil, fmt.Errorf("mastodon get status: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("mastodon get status: status %d", resp.StatusCode())
	}

	return &model.PerformanceSnapshot{
		NetworkType: p.Identify(),
		Timestamp:   time.Now().UTC(),
		Likes:       int64Ptr(status.FavouritesCount),
		Reposts:     int64Ptr(status.ReblogsCount),
		Comments:    int64Ptr(status.RepliesCount),
	}, nil
}

func fileNameOf(path string) string {
	if idx := strings.LastIndex(path, "/"); idx >= 0 {
		return path[idx+1:]
	}
	return path
}
