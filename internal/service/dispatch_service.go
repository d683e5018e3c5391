package service

import (
	"Crosswire/internal/api/dto"
	"Crosswire/internal/model"
	"Crosswire/internal/pkg/consts"
	"Crosswire/internal/pkg/redis"
	"Crosswire/internal/provider"
	"Crosswire/internal/repository"
	"context"
	"fmt"
	log "log/slog"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

// DispatchService 到期帖子的发现与投递
type DispatchService interface {
	// ProcessDuePosts 处理一轮到期帖子，逐条串行，单条失败不影响其余
	ProcessDuePosts(ctx context.Context)
	// UpcomingPosts 预览窗口内待发布的帖子，凭证不回传
	UpcomingPosts(ctx context.Context, hoursAhead int) ([]*dto.UpcomingPostDTO, error)
}

// Claimer 发布前的占位锁，收窄结果落库失败后的重复发布窗口
type Claimer interface {
	Claim(ctx context.Context, postID, networkID uint64) bool
	Release(ctx context.Context, postID, networkID uint64)
}

type dispatchServiceImpl struct {
	postRepo repository.ScheduledPostRepo
	registry *provider.Registry
	resolver CredentialResolver
	claimer  Claimer
	now      func() time.Time
}

func NewDispatchService(
	postRepo repository.ScheduledPostRepo,
	registry *provider.Registry,
	resolver CredentialResolver,
	claimer Claimer,
) DispatchService {
	return &dispatchServiceImpl{
		postRepo: postRepo,
		registry: registry,
		resolver: resolver,
		claimer:  claimer,
		now:      time.Now,
	}
}

func (s *dispatchServiceImpl) ProcessDuePosts(ctx context.Context) {
	due, err := s.postRepo.FindDue(ctx, s.now())
	if err != nil {
		log.ErrorContext(ctx, "failed to query due posts", "err", err)
		return
	}
	if len(due) == 0 {
		return
	}

	var sent, failed int
	for _, post := range due {
		if s.processOne(ctx, post) {
			sent++
		} else {
			failed++
		}
	}

	log.InfoContext(ctx, "dispatch cycle finished",
		"due", len(due), "sent", sent, "failed", failed)
}

// processOne 尝试发布一条记录并落库结果，返回是否发布成功。
// 任何一步出错都转成该条的终态失败，不向上传播。
func (s *dispatchServiceImpl) processOne(ctx context.Context, post *model.ScheduledPost) bool {
	if !s.claimer.Claim(ctx, post.PostID, post.NetworkID) {
		log.WarnContext(ctx, "post already claimed, skipping",
			"post_id", post.PostID, "network_id", post.NetworkID)
		return false
	}

	var networkPostID *string

	p := s.registry.Get(post.NetworkType)
	if p == nil {
		log.ErrorContext(ctx, "no provider registered for network, recording terminal failure",
			"post_id", post.PostID, "network_type", post.NetworkType)
	} else {
		creds, err := s.resolver.ResolveUsableCredentials(ctx, &post.Account)
		if err != nil {
			log.ErrorContext(ctx, "failed to resolve credentials, recording terminal failure",
				"post_id", post.PostID, "network_id", post.NetworkID, "err", err)
		} else if !p.ValidateCredentials(creds) {
			log.WarnContext(ctx, "invalid credentials, recording terminal failure",
				"post_id", post.PostID, "network_type", post.NetworkType)
		} else {
			id, err := p.Send(ctx, post.Content, post.AttachmentPaths(), creds)
			if err != nil {
				log.ErrorContext(ctx, "send failed",
					"post_id", post.PostID, "network_type", post.NetworkType, "err", err)
			} else if id != "" {
				networkPostID = &id
			}
		}
	}

	if err := s.postRepo.MarkDispatched(ctx, post.PostID, post.NetworkID, networkPostID, s.now()); err != nil {
		// 结果没写进去，占位锁的 TTL 内不会被重发；锁过期后存在重发风险，记录备查
		log.ErrorContext(ctx, "failed to persist dispatch outcome, post may be reattempted",
			"post_id", post.PostID, "network_id", post.NetworkID, "err", err)
		return false
	}

	s.claimer.Release(ctx, post.PostID, post.NetworkID)

	if networkPostID != nil {
		log.InfoContext(ctx, "post dispatched",
			"post_id", post.PostID, "network_type", post.NetworkType, "network_post_id", *networkPostID)
		return true
	}
	return false
}

func (s *dispatchServiceImpl) UpcomingPosts(ctx context.Context, hoursAhead int) ([]*dto.UpcomingPostDTO, error) {
	if hoursAhead <= 0 {
		return nil, ErrParamInvalid
	}

	key := consts.UpcomingPostsKey + strconv.Itoa(hoursAhead)
	if val, err := redis.GetValue(ctx, key); err == nil && val != "" {
		if cached, ok := decodeUpcomingCache(val); ok {
			return cached, nil
		}
		log.WarnContext(ctx, "discarding undecodable upcoming posts cache entry", "key", key)
	}

	now := s.now()
	posts, err := s.postRepo.FindUpcoming(ctx, now, now.Add(time.Duration(hoursAhead)*time.Hour))
	if err != nil {
		return nil, err
	}

	out := make([]*dto.UpcomingPostDTO, 0, len(posts))
	for _, post := range posts {
		var item dto.UpcomingPostDTO
		if err = copier.Copy(&item, post); err != nil {
			return nil, fmt.Errorf("failed to map upcoming post: %w", err)
		}
		item.Attachments = post.AttachmentPaths()
		item.Credentials = map[string]string{}
		out = append(out, &item)
	}

	if data, err := json.Marshal(out); err == nil {
		_ = redis.SetWithExpiration(ctx, key, string(data), consts.UpcomingCacheTTL)
	}

	return out, nil
}

// decodeUpcomingCache 解析缓存内容，损坏的条目返回 false 走回源
func decodeUpcomingCache(val string) ([]*dto.UpcomingPostDTO, bool) {
	var cached []*dto.UpcomingPostDTO
	if err := json.Unmarshal([]byte(val), &cached); err != nil {
		return nil, false
	}
	return cached, true
}

// redisClaimer 基于 Redis SETNX 的占位锁实现
type redisClaimer struct {
	token string
}

func NewRedisClaimer() Claimer {
	return &redisClaimer{token: uuid.NewString()}
}

func claimKey(postID, networkID uint64) string {
	return consts.DispatchClaimKey + strconv.FormatUint(postID, 10) + ":" + strconv.FormatUint(networkID, 10)
}

func (c *redisClaimer) Claim(ctx context.Context, postID, networkID uint64) bool {
	ok, err := redis.TryLock(ctx, claimKey(postID, networkID), c.token, consts.DispatchClaimTTL, 1)
	if err != nil {
		log.ErrorContext(ctx, "dispatch claim error", "post_id", postID, "err", err)
		return false
	}
	return ok
}

func (c *redisClaimer) Release(ctx context.Context, postID, networkID uint64) {
	redis.UnLock(ctx, claimKey(postID, networkID), c.token)
}
