package provider

import (
	"Crosswire/internal/model"
	"Crosswire/internal/pkg/consts"
	"Crosswire/internal/pkg/media"
	"Crosswire/internal/pkg/storage"
	"context"
	"fmt"
	log "log/slog"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	blueskyBaseURL      = "https://bsky.social"
	blueskyMaxBlobBytes = 976 * 1024
	blueskyMaxImages    = 4
)

// blueskyProvider 通过 AT Protocol XRPC 发布
type blueskyProvider struct {
	client *resty.Client
	loader storage.ObjectLoader
}

func NewBlueskyProvider(loader storage.ObjectLoader) Provider {
	return &blueskyProvider{
		client: resty.New().
			SetBaseURL(blueskyBaseURL).
			SetTimeout(20 * time.Second),
		loader: loader,
	}
}

func (p *blueskyProvider) Identify() string {
	return consts.NetworkBluesky
}

func (p *blueskyProvider) RequiredCredentialNames() []string {
	return []string{"handle", "password"}
}

func (p *blueskyProvider) ValidateCredentials(creds Credentials) bool {
	return creds != nil && creds.HasAll(p.RequiredCredentialNames())
}

func (p *blueskyProvider) MonitoringIntervalHours() int {
	return 1
}

func (p *blueskyProvider) SupportsAnalytics() bool {
	return true
}

type blueskySession struct {
	AccessJwt string `json:"accessJwt"`
	Did       string `json:"did"`
}

type blueskyBlob struct {
	Blob map[string]interface{} `json:"blob"`
}

func (p *blueskyProvider) createSession(ctx context.Context, creds Credentials) (*blueskySession, error) {
	var session blueskySession
	resp, err := p.client.R().
		SetContext(ctx).
		SetBody(map[string]string{
			"identifier": creds["handle"],
			"password":   creds["password"],
		}).
		SetResult(&session).
		Post("/xrpc/com.atproto.server.createSession")
	if err != nil {
		return nil, fmt.Errorf("bluesky create session: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("bluesky create session: status %d", resp.StatusCode())
	}
	return &session, nil
}

func (p *blueskyProvider) Send(ctx context.Context, content string, attachmentPaths []string, creds Credentials) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("bluesky: empty content")
	}

	session, err := p.createSession(ctx, creds)
	if err != nil {
		return "", err
	}

	var images []map[string]interface{}
	for i, path := range attachmentPaths {
		if i >= blueskyMaxImages {
			log.WarnContext(ctx, "bluesky supports at most 4 images, dropping the rest",
				"total", len(attachmentPaths))
			break
		}

		data, contentType, err := p.loader.Load(ctx, path)
		if err != nil {
			log.WarnContext(ctx, "failed to load attachment, skipping", "path", path, "err", err)
			continue
		}
		if !strings.HasPrefix(contentType, "image/") {
			log.WarnContext(ctx, "bluesky only supports image attachments, dropping",
				"path", path, "content_type", contentType)
			continue
		}

		data = media.FitUnderLimit(data, blueskyMaxBlobBytes)

		var uploaded blueskyBlob
		resp, err := p.client.R().
			SetContext(ctx).
			SetAuthToken(session.AccessJwt).
			SetHeader("Content-Type", "image/jpeg").
			SetBody(data).
			SetResult(&uploaded).
			Post("/xrpc/com.atproto.repo.uploadBlob")
		if err != nil {
			return "", fmt.Errorf("bluesky upload blob: %w", err)
		}
		if resp.IsError() {
			return "", fmt.Errorf("bluesky upload blob: status %d", resp.StatusCode())
		}

		images = append(images, map[string]interface{}{
			"alt":   "",
			"image": uploaded.Blob,
		})
	}

	record := map[string]interface{}{
		"$type":     "app.bsky.feed.post",
		"text":      content,
		"createdAt": time.Now().UTC().Format(time.RFC3339),
	}
	if len(images) > 0 {
		record["embed"] = map[string]interface{}{
			"$type":  "app.bsky.embed.images",
			"images": images,
		}
	}

	var created struct {
		URI string `json:"uri"`
	}
	resp, err := p.client.R().
		SetContext(ctx).
		SetAuthToken(session.AccessJwt).
		SetBody(map[string]interface{}{
			"repo":       session.Did,
			"collection": "app.bsky.feed.post",
			"record":     record,
		}).
		SetResult(&created).
		Post("/xrpc/com.atproto.repo.createRecord")
	if err != nil {
		return "", fmt.Errorf("bluesky create record: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("bluesky create record: status %d", resp.StatusCode())
	}

	return created.URI, nil
}

func (p *blueskyProvider) FetchMetrics(ctx context.Context, networkPostID string, creds Credentials) (*model.PerformanceSnapshot, error) {
	session, err := p.createSession(ctx, creds)
	if err != nil {
		return nil, err
	}

	var thread struct {
		Thread struct {
			Post struct {
				LikeCount   int64 `json:"likeCount"`
				RepostCount int64 `json:"repostCount"`
				ReplyCount  int64 `json:"replyCount"`
				QuoteCount  int64 `json:"quoteCount"`
			} `json:"post"`
		} `json:"thread"`
	}
	resp, err := p.client.R().
		SetContext(ctx).
		SetAuthToken(session.AccessJwt).
		SetQueryParams(map[string]string{
			"uri":   networkPostID,
			"depth": "0",
		}).
		SetResult(&thread).
		Get("/xrpc/app.bsky.feed.getPostThread")
	if err != nil {
		return nil, fmt.Errorf("bluesky get post thread: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("bluesky get post thread: status %d", resp.StatusCode())
	}

	post := thread.Thread.Post
	return &model.PerformanceSnapshot{
		NetworkType: p.Identify(),
		Timestamp:   time.Now().UTC(),
		Likes:       int64Ptr(post.LikeCount),
		Reposts:     int64Ptr(post.RepostCount),
		Comments:    int64Ptr(post.ReplyCount),
		CustomMetrics: map[string]string{
			"quote_count": fmt.Sprintf("%d", post.QuoteCount),
		},
	}, nil
}
