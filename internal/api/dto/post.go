package dto

import "time"

// UpcomingPostDTO 即将发布的帖子视图，凭证字段恒为空 map，不向外暴露敏感信息
type UpcomingPostDTO struct {
	PostID      uint64            `json:"post_id"`
	NetworkID   uint64            `json:"network_id"`
	ContentID   uint64            `json:"content_id"`
	Content     string            `json:"content"`
	Attachments []string          `json:"attachments"`
	ScheduledAt time.Time         `json:"scheduled_at"`
	NetworkType string            `json:"network_type"`
	Credentials map[string]string `json:"credentials"`
}

// UpcomingQueryDTO 预览窗口查询参数
type UpcomingQueryDTO struct {
	Hours int `form:"hours,default=24" binding:"min=1,max=168"`
}
