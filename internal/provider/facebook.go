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

const facebookBaseURL = "https://graph.facebook.com/v21.0"

// facebookProvider 通过 Graph API 发布页面帖子。
// 长期令牌约 60 天过期，TokenLifecycleManager 在 45 天窗口到期前换新。
type facebookProvider struct {
	client *resty.Client
	loader storage.ObjectLoader
}

func NewFacebookProvider(loader storage.ObjectLoader) Provider {
	return &facebookProvider{
		client: resty.New().
			SetBaseURL(facebookBaseURL).
			SetTimeout(20 * time.Second),
		loader: loader,
	}
}

func (p *facebookProvider) Identify() string {
	return consts.NetworkFacebook
}

func (p *facebookProvider) RequiredCredentialNames() []string {
	return []string{"page_id", "app_id", "app_secret", "access_token"}
}

func (p *facebookProvider) ValidateCredentials(creds Credentials) bool {
	return creds != nil && creds.HasAll(p.RequiredCredentialNames())
}

func (p *facebookProvider) MonitoringIntervalHours() int {
	return 1
}

func (p *facebookProvider) SupportsAnalytics() bool {
	return true
}

// RefreshableCredentialName 实现 TokenRefresher
func (p *facebookProvider) RefreshableCredentialName() string {
	return "access_token"
}

// RefreshToken 用 fb_exchange_token 换取新的长期令牌
func (p *facebookProvider) RefreshToken(ctx context.Context, creds Credentials) (string, error) {
	var result struct {
		AccessToken string `json:"access_token"`
	}
	resp, err := p.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"grant_type":        "fb_exchange_token",
			"client_id":         creds["app_id"],
			"client_secret":     creds["app_secret"],
			"fb_exchange_token": creds["access_token"],
		}).
		SetResult(&result).
		Get("/oauth/access_token")
	if err != nil {
		return "", fmt.Errorf("facebook token exchange: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("facebook token exchange: status %d", resp.StatusCode())
	}
	if result.AccessToken == "" {
		return "", fmt.Errorf("facebook token exchange: empty token in response")
	}
	return result.AccessToken, nil
}

func (p *facebookProvider) Send(ctx context.Context, content string, attachmentPaths []string, creds Credentials) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("facebook: empty content")
	}

	pageID := creds["page_id"]
	token := creds["access_token"]

	// 带图片时走 photos 端点，单帖仅使用第一张
	if len(attachmentPaths) > 0 {
		if len(attachmentPaths) > 1 {
			log.WarnContext(ctx, "facebook page post uses the first photo only, dropping the rest",
				"total", len(attachmentPaths))
		}

		data, _, err := p.loader.Load(ctx, attachmentPaths[0])
		if err != nil {
			log.WarnContext(ctx, "failed to load attachment, falling back to text post",
				"path", attachmentPaths[0], "err", err)
		} else {
			var created struct {
				PostID string `json:"post_id"`
				ID     string `json:"id"`
			}
			resp, err := p.client.R().
				SetContext(ctx).
				SetQueryParam("access_token", token).
				SetFileReader("source", fileNameOf(attachmentPaths[0]), bytes.NewReader(data)).
				SetMultipartFormData(map[string]string{"message": content}).
				SetResult(&created).
				Post("/" + pageID + "/photos")
			if err != nil {
				return "", fmt.Errorf("facebook photo post: %w", err)
			}
			if resp.IsError() {
				return "", fmt.Errorf("facebook photo post: status %d", resp.StatusCode())
			}
			if created.PostID != "" {
				return created.PostID, nil
			}
			return created.ID, nil
		}
	}

	var created struct {
		ID string `json:"id"`
	}
	resp, err := p.client.R().
		SetContext(ctx).
		SetQueryParam("access_token", token).
		SetBody(map[string]string{"message": content}).
		SetResult(&created).
		Post("/" + pageID + "/feed")
	if err != nil {
		return "", fmt.Errorf("facebook feed post: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("facebook feed post: status %d", resp.StatusCode())
	}

	return created.ID, nil
}

func (p *facebookProvider) FetchMetrics(ctx context.Context, networkPostID string, creds Credentials) (*model.PerformanceSnapshot, error) {
	token := creds["access_token"]

	var insights struct {
		Data []struct {
			Name   string `json:"name"`
			Values []struct {
				Value int64 `json:"value"`
			} `json:"values"`
		} `json:"data"`
	}
	resp, err := p.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"access_token": token,
			"metric":       "post_impressions,post_impressions_unique,post_clicks",
		}).
		SetResult(&insights).
		Get("/" + networkPostID + "/insights")
	if err != nil {
		return nil, fmt.Errorf("facebook insights: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("facebook insights: status %d", resp.StatusCode())
	}

	snap := &model.PerformanceSnapshot{
		NetworkType: p.Identify(),
		Timestamp:   time.Now().UTC(),
	}
	for _, metric := range insights.Data {
		if len(metric.Values) == 0 {
			continue
		}
		value := metric.Values[0].Value
		switch metric.Name {
		case "post_impressions":
			snap.Impressions = int64Ptr(value)
		case "post_impressions_unique":
			snap.Reach = int64Ptr(value)
		case "post_clicks":
			if snap.CustomMetrics == nil {
				snap.CustomMetrics = make(map[string]string)
			}
			snap.CustomMetrics["post_clicks"] = fmt.Sprintf("%d", value)
		}
	}

	var detail struct {
		Shares struct {
			Count int64 `json:"count"`
		} `json:"shares"`
		Comments struct {
			Summary struct {
				TotalCount int64 `json:"total_count"`
			} `json:"summary"`
		} `json:"comments"`
		Reactions struct {
			Summary struct {
				TotalCount int64 `json:"total_count"`
			} `json:"summary"`
		} `json:"reactions"`
	}
	resp, err = p.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"access_token": token,
			"fields":       "shares,comments.summary(true),reactions.summary(true)",
		}).
		SetResult(&detail).
		Get("/" + networkPostID)
	if err != nil {
		return nil, fmt.Errorf("facebook post detail: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("facebook post detail: status %d", resp.StatusCode())
	}

	snap.Shares = int64Ptr(detail.Shares.Count)
	snap.Comments = int64Ptr(detail.Comments.Summary.TotalCount)
	snap.Reactions = map[string]int64{
		"total": detail.Reactions.Summary.TotalCount,
	}

	return snap, nil
}
