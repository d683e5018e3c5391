package provider

import (
	"Crosswire/internal/model"
	"Crosswire/internal/pkg/consts"
	"context"
	"fmt"
	log "log/slog"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const xBaseURL = "https://api.x.com"

// xProvider 基础档位的配额很紧，指标轮询放到 12 小时一次
type xProvider struct {
	client *resty.Client
}

func NewXProvider() Provider {
	return &xProvider{
		client: resty.New().
			SetBaseURL(xBaseURL).
			SetTimeout(20 * time.Second),
	}
}

func (p *xProvider) Identify() string {
	return consts.NetworkX
}

func (p *xProvider) RequiredCredentialNames() []string {
	return []string{"access_token"}
}

func (p *xProvider) ValidateCredentials(creds Credentials) bool {
	return creds != nil && creds.HasAll(p.RequiredCredentialNames())
}

func (p *xProvider) MonitoringIntervalHours() int {
	return 12
}

func (p *xProvider) SupportsAnalytics() bool {
	return true
}

func (p *xProvider) Send(ctx context.Context, content string, attachmentPaths []string, creds Credentials) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("x: empty content")
	}
	if len(attachmentPaths) > 0 {
		log.WarnContext(ctx, "x provider does not support media, dropping attachments",
			"count", len(attachmentPaths))
	}

	var created struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	resp, err := p.client.R().
		SetContext(ctx).
		SetAuthToken(creds["access_token"]).
		SetBody(map[string]string{"text": content}).
		SetResult(&created).
		Post("/2/tweets")
	if err != nil {
		return "", fmt.Errorf("x create tweet: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("x create tweet: status %d", resp.StatusCode())
	}

	return created.Data.ID, nil
}

func (p *xProvider) FetchMetrics(ctx context.Context, networkPostID string, creds Credentials) (*model.PerformanceSnapshot, error) {
	var tweet struct {
		Data struct {
			PublicMetrics struct {
				RetweetCount    int64 `json:"retweet_count"`
				ReplyCount      int64 `json:"reply_count"`
				LikeCount       int64 `json:"like_count"`
				QuoteCount      int64 `json:"quote_count"`
				ImpressionCount int64 `json:"impression_count"`
			} `json:"public_metrics"`
		} `json:"data"`
	}
	resp, err := p.client.R().
		SetContext(ctx).
		SetAuthToken(creds["access_token"]).
		SetQueryParam("tweet.fields", "public_metrics").
		SetResult(&tweet).
		Get("/2/tweets/" + networkPostID)
	if err != nil {
		return nil, fmt.Errorf("x get tweet: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("x get tweet: status %d", resp.StatusCode())
	}

	pm := tweet.Data.PublicMetrics
	return &model.PerformanceSnapshot{
		NetworkType: p.Identify(),
		Timestamp:   time.Now().UTC(),
		Likes:       int64Ptr(pm.LikeCount),
		Reposts:     int64Ptr(pm.RetweetCount),
		Comments:    int64Ptr(pm.ReplyCount),
		Impressions: int64Ptr(pm.ImpressionCount),
		CustomMetrics: map[string]string{
			"quote_count": fmt.Sprintf("%d", pm.QuoteCount),
		},
	}, nil
}
