package repository

import (
	"context"
	"errors"

	"github.com/unionhall/outreach-engine/internal/domain"
	"gorm.io/gorm"
)

// AccountRepository resolves caller identity for the auth middleware.
type AccountRepository interface {
	GetByAPIToken(ctx context.Context, token string) (*domain.Account, error)
}

type GormAccountRepo struct {
	db *gorm.DB
}

func NewGormAccountRepo(db *gorm.DB) *GormAccountRepo {
	return &GormAccountRepo{db: db}
}

func (r *GormAccountRepo) GetByAPIToken(ctx context.Context, token string) (*domain.Account, error) {
	var model AccountModel
	err := r.db.WithContext(ctx).
		Where("api_token = ?", token).
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return accountModelToDomain(&model), nil
}
