package model

import (
	"time"
)

// NetworkAccount 一个社交网络注册，归属某个 owner
type NetworkAccount struct {
	ID          uint64    `gorm:"primaryKey"`
	OwnerID     uint64    `gorm:"not null;index:idx_owner_network" json:"owner_id"`
	NetworkType string    `gorm:"type:varchar(32);not null;index:idx_owner_network" json:"network_type"`
	DisplayName string    `gorm:"type:varchar(255)" json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// 关联关系
	Credentials []AccountCredential `gorm:"foreignKey:AccountID;references:ID"`
}

func (NetworkAccount) TableName() string {
	return "network_accounts"
}

// AccountCredential 网络注册下的一条命名凭证。
// IssuedAt 仅对会过期的凭证有意义，为空表示无法判断新鲜度。
type AccountCredential struct {
	ID        uint64     `gorm:"primaryKey"`
	AccountID uint64     `gorm:"not null;index:idx_account_name,unique" json:"account_id"`
	Name      string     `gorm:"type:varchar(64);not null;index:idx_account_name,unique" json:"name"`
	Value     string     `gorm:"type:text;not null" json:"-"`
	IssuedAt  *time.Time `json:"issued_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (AccountCredential) TableName() string {
	return "account_credentials"
}
