package model

import (
	"time"

	"github.com/goccy/go-json"
)

// ScheduledPost 一条待发布记录，对应 (帖子, 目标网络) 的唯一组合。
// DispatchedAt 非空表示已尝试发布；此时 NetworkPostID 为空即终态失败，不再自动重试。
type ScheduledPost struct {
	ID            uint64     `gorm:"primaryKey"`
	PostID        uint64     `gorm:"not null;index:idx_post_network,unique" json:"post_id"`
	NetworkID     uint64     `gorm:"not null;index:idx_post_network,unique" json:"network_id"`
	ContentID     uint64     `gorm:"not null" json:"content_id"`
	Content       string     `gorm:"type:text;not null" json:"content"`
	Attachments   string     `gorm:"type:text" json:"attachments"` // JSON 数组，对象存储的 key
	ScheduledAt   time.Time  `gorm:"not null;index:idx_due" json:"scheduled_at"`
	NetworkType   string     `gorm:"type:varchar(32);not null;index" json:"network_type"`
	DispatchedAt  *time.Time `gorm:"index:idx_due" json:"dispatched_at"`
	NetworkPostID *string    `gorm:"type:varchar(512)" json:"network_post_id"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	// 关联关系
	Account NetworkAccount `gorm:"foreignKey:NetworkID;references:ID"`
}

func (ScheduledPost) TableName() string {
	return "scheduled_posts"
}

// AttachmentPaths 解析附件 key 列表，解析失败按无附件处理
func (p *ScheduledPost) AttachmentPaths() []string {
	if p.Attachments == "" {
		return nil
	}
	var paths []string
	if err := json.Unmarshal([]byte(p.Attachments), &paths); err != nil {
		return nil
	}
	return paths
}

// EncodeAttachments 序列化附件 key 列表
func EncodeAttachments(paths []string) string {
	if len(paths) == 0 {
		return ""
	}
	data, err := json.Marshal(paths)
	if err != nil {
		return ""
	}
	return string(data)
}
