package repository

import (
	"Crosswire/internal/model"
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ScheduledPostRepo interface {
	Create(ctx context.Context, post *model.ScheduledPost) error
	FindDue(ctx context.Context, now time.Time) ([]*model.ScheduledPost, error)
	FindUpcoming(ctx context.Context, from, to time.Time) ([]*model.ScheduledPost, error)
	MarkDispatched(ctx context.Context, postID, networkID uint64, networkPostID *string, at time.Time) error
	FindTracked(ctx context.Context, networkType string, since time.Time) ([]*model.TrackedPost, error)
	FindTrackedOne(ctx context.Context, postID uint64, networkType string) (*model.TrackedPost, error)
}

type scheduledPostRepoImpl struct {
	db *gorm.DB
}

func NewScheduledPostRepo(db *gorm.DB) ScheduledPostRepo {
	return &scheduledPostRepoImpl{db: db}
}

// Create (post_id, network_id) 已存在时静默忽略，上游事件可能重复投递
func (r *scheduledPostRepoImpl) Create(ctx context.Context, post *model.ScheduledPost) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "post_id"}, {Name: "network_id"}},
		DoNothing: true,
	}).Create(post).Error
}

// FindDue 查询到期且未尝试发布的记录，按计划时间升序
func (r *scheduledPostRepoImpl) FindDue(ctx context.Context, now time.Time) ([]*model.ScheduledPost, error) {
	posts := make([]*model.ScheduledPost, 0)
	result := r.db.WithContext(ctx).
		Preload("Account").
		Where("scheduled_at <= ? AND dispatched_at IS NULL", now).
		Order("scheduled_at ASC").
		Find(&posts)
	if result.Error != nil {
		return nil, result.Error
	}
	return posts, nil
}

// FindUpcoming 查询窗口内尚未到期的记录
func (r *scheduledPostRepoImpl) FindUpcoming(ctx context.Context, from, to time.Time) ([]*model.ScheduledPost, error) {
	posts := make([]*model.ScheduledPost, 0)
	result := r.db.WithContext(ctx).
		Where("scheduled_at > ? AND scheduled_at <= ? AND dispatched_at IS NULL", from, to).
		Order("scheduled_at ASC").
		Find(&posts)
	if result.Error != nil {
		return nil, result.Error
	}
	return posts, nil
}

// MarkDispatched 写入发布结果，只命中尚无结果的行，(post_id, network_id) 唯一约束兜底
func (r *scheduledPostRepoImpl) MarkDispatched(ctx context.Context, postID, networkID uint64, networkPostID *string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.ScheduledPost{}).
		Where("post_id = ? AND network_id = ? AND dispatched_at IS NULL", postID, networkID).
		Updates(map[string]interface{}{
			"dispatched_at":   at,
			"network_post_id": networkPostID,
		}).Error
}

// FindTracked 查询窗口内发布成功的帖子，连同归属 owner
func (r *scheduledPostRepoImpl) FindTracked(ctx context.Context, networkType string, since time.Time) ([]*model.TrackedPost, error) {
	tracked := make([]*model.TrackedPost, 0)
	result := r.db.WithContext(ctx).
		Table("scheduled_posts").
		Select("scheduled_posts.post_id, scheduled_posts.network_post_id, scheduled_posts.network_type, network_accounts.owner_id, scheduled_posts.dispatched_at, scheduled_posts.content").
		Joins("JOIN network_accounts ON network_accounts.id = scheduled_posts.network_id").
		Where("scheduled_posts.network_type = ? AND scheduled_posts.network_post_id IS NOT NULL AND scheduled_posts.dispatched_at >= ?", networkType, since).
		Order("scheduled_posts.dispatched_at ASC").
		Scan(&tracked)
	if result.Error != nil {
		return nil, result.Error
	}
	return tracked, nil
}

// FindTrackedOne 按帖子与网络定位一条成功发布记录
func (r *scheduledPostRepoImpl) FindTrackedOne(ctx context.Context, postID uint64, networkType string) (*model.TrackedPost, error) {
	var tracked model.TrackedPost
	result := r.db.WithContext(ctx).
		Table("scheduled_posts").
		Select("scheduled_posts.post_id, scheduled_posts.network_post_id, scheduled_posts.network_type, network_accounts.owner_id, scheduled_posts.dispatched_at, scheduled_posts.content").
		Joins("JOIN network_accounts ON network_accounts.id = scheduled_posts.network_id").
		Where("scheduled_posts.post_id = ? AND scheduled_posts.network_type = ? AND scheduled_posts.network_post_id IS NOT NULL", postID, networkType).
		Scan(&tracked)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return &tracked, nil
}
