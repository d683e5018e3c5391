package repository

import (
	"Crosswire/internal/model"
	"context"
	"errors"

	"gorm.io/gorm"
)

type AccountRepo interface {
	GetAccount(ctx context.Context, id uint64) (*model.NetworkAccount, error)
	FindByOwnerAndNetwork(ctx context.Context, ownerID uint64, networkType string) (*model.NetworkAccount, error)
	ListByNetwork(ctx context.Context, networkType string) ([]*model.NetworkAccount, error)
}

type accountRepoImpl struct {
	db *gorm.DB
}

func NewAccountRepo(db *gorm.DB) AccountRepo {
	return &accountRepoImpl{db: db}
}

func (r *accountRepoImpl) GetAccount(ctx context.Context, id uint64) (*model.NetworkAccount, error) {
	var account model.NetworkAccount
	err := r.db.WithContext(ctx).First(&account, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

func (r *accountRepoImpl) FindByOwnerAndNetwork(ctx context.Context, ownerID uint64, networkType string) (*model.NetworkAccount, error) {
	var account model.NetworkAccount
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND network_type = ?", ownerID, networkType).
		First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

func (r *accountRepoImpl) ListByNetwork(ctx context.Context, networkType string) ([]*model.NetworkAccount, error) {
	accounts := make([]*model.NetworkAccount, 0)
	result := r.db.WithContext(ctx).
		Where("network_type = ?", networkType).
		Find(&accounts)
	if result.Error != nil {
		return nil, result.Error
	}
	return accounts, nil
}
