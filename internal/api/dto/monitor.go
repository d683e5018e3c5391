package dto

// PollOnceDTO 手工触发一次指标拉取
type PollOnceDTO struct {
	PostID      uint64 `json:"post_id" binding:"required,min=1"`
	NetworkType string `json:"network_type" binding:"required,min=1,max=32"`
	OwnerID     uint64 `json:"owner_id" binding:"required,min=1"`
}

// NetworkInfoDTO 受支持网络的概要
type NetworkInfoDTO struct {
	Name                string   `json:"name"`
	RequiredCredentials []string `json:"required_credentials"`
	MonitoringHours     int      `json:"monitoring_hours"`
	SupportsAnalytics   bool     `json:"supports_analytics"`
}
