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

const linkedinBaseURL = "https://api.linkedin.com"

// linkedinProvider 纯文本 UGC 发帖。互动数据接口需要 Marketing 权限，
// 这里不申请，指标始终返回零值快照。
type linkedinProvider struct {
	client *resty.Client
}

func NewLinkedInProvider() Provider {
	return &linkedinProvider{
		client: resty.New().
			SetBaseURL(linkedinBaseURL).
			SetTimeout(20 * time.Second),
	}
}

func (p *linkedinProvider) Identify() string {
	return consts.NetworkLinkedIn
}

func (p *linkedinProvider) RequiredCredentialNames() []string {
	return []string{"access_token", "author_urn"}
}

func (p *linkedinProvider) ValidateCredentials(creds Credentials) bool {
	return creds != nil && creds.HasAll(p.RequiredCredentialNames())
}

func (p *linkedinProvider) MonitoringIntervalHours() int {
	return 1
}

func (p *linkedinProvider) SupportsAnalytics() bool {
	return false
}

func (p *linkedinProvider) Send(ctx context.Context, content string, attachmentPaths []string, creds Credentials) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("linkedin: empty content")
	}
	if len(attachmentPaths) > 0 {
		log.WarnContext(ctx, "linkedin provider does not support media, dropping attachments",
			"count", len(attachmentPaths))
	}

	body := map[string]interface{}{
		"author":         creds["author_urn"],
		"lifecycleState": "PUBLISHED",
		"specificContent": map[string]interface{}{
			"com.linkedin.ugc.ShareContent": map[string]interface{}{
				"shareCommentary": map[string]string{
					"text": content,
				},
				"shareMediaCategory": "NONE",
			},
		},
		"visibility": map[string]string{
			"com.linkedin.ugc.MemberNetworkVisibility": "PUBLIC",
		},
	}

	var created struct {
		ID string `json:"id"`
	}
	resp, err := p.client.R().
		SetContext(ctx).
		SetAuthToken(creds["access_token"]).
		SetHeader("X-Restli-Protocol-Version", "2.0.0").
		SetBody(body).
		SetResult(&created).
		Post("/v2/ugcPosts")
	if err != nil {
		return "", fmt.Errorf("linkedin ugc post: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("linkedin ugc post: status %d", resp.StatusCode())
	}

	if created.ID == "" {
		created.ID = resp.Header().Get("X-RestLi-Id")
	}
	return created.ID, nil
}

// FetchMetrics 返回零值快照，该网络不提供互动数据
func (p *linkedinProvider) FetchMetrics(_ context.Context, _ string, _ Credentials) (*model.PerformanceSnapshot, error) {
	return &model.PerformanceSnapshot{
		NetworkType: p.Identify(),
		Timestamp:   time.Now().UTC(),
	}, nil
}
