package repository

import (
	"Crosswire/internal/model"
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

type CredentialRepo interface {
	GetCredentialMap(ctx context.Context, accountID uint64) (map[string]string, error)
	GetCredential(ctx context.Context, accountID uint64, name string) (*model.AccountCredential, error)
	UpdateValue(ctx context.Context, accountID uint64, name, value string, issuedAt time.Time) error
	BackfillIssuedAt(ctx context.Context, networkType, name string, now time.Time) (int64, error)
}

type credentialRepoImpl struct {
	db *gorm.DB
}

func NewCredentialRepo(db *gorm.DB) CredentialRepo {
	return &credentialRepoImpl{db: db}
}

func (r *credentialRepoImpl) GetCredentialMap(ctx context.Context, accountID uint64) (map[string]string, error) {
	creds := make([]*model.AccountCredential, 0)
	result := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Find(&creds)
	if result.Error != nil {
		return nil, result.Error
	}

	out := make(map[string]string, len(creds))
	for _, c := range creds {
		out[c.Name] = c.Value
	}
	return out, nil
}

func (r *credentialRepoImpl) GetCredential(ctx context.Context, accountID uint64, name string) (*model.AccountCredential, error) {
	var cred model.AccountCredential
	err := r.db.WithContext(ctx).
		Where("account_id = ? AND name = ?", accountID, name).
		First(&cred).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cred, nil
}

// UpdateValue 刷新成功后写入新值并重置签发时间
func (r *credentialRepoImpl) UpdateValue(ctx context.Context, accountID uint64, name, value string, issuedAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.AccountCredential{}).
		Where("account_id = ? AND name = ?", accountID, name).
		Updates(map[string]interface{}{
			"value":     value,
			"issued_at": issuedAt,
		}).Error
}

// BackfillIssuedAt 为存量注册补种签发时间，只动没有时间戳的行
func (r *credentialRepoImpl) BackfillIssuedAt(ctx context.Context, networkType, name string, now time.Time) (int64, error) {
	sub := r.db.Model(&model.NetworkAccount{}).
		Select("id").
		Where("network_type = ?", networkType)

	result := r.db.WithContext(ctx).
		Model(&model.AccountCredential{}).
		Where("name = ? AND issued_at IS NULL AND account_id IN (?)", name, sub).
		Update("issued_at", now)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
