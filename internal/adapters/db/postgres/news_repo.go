package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/khattakbelt/community-api/internal/domain/apperrors"
	"github.com/khattakbelt/community-api/internal/domain/model"
)

type NewsRepo struct {
	db *gorm.DB
}

func NewNewsRepo(db *gorm.DB) *NewsRepo {
	return &NewsRepo{db: db}
}

func (p *NewsRepo) CreateNews(ctx context.Context, item model.News) (uuid.UUID, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	res := p.db.WithContext(ctx).Create(&item)
	if err := res.Error; err != nil {
		return uuid.Nil, apperrors.WrapInternal(err, "CreateNews")
	}
	return item.ID, nil
}

func (p *NewsRepo) GetNewsByID(ctx context.Context, id uuid.UUID) (model.News, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	var n model.News
	res := p.db.WithContext(ctx).Where("id = ?", id).First(&n)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return model.News{}, apperrors.ErrNotFound
	}
	if err := res.Error; err != nil {
		return model.News{}, apperrors.WrapInternal(err, "GetNewsByID")
	}
	return n, nil
}

func (p *NewsRepo) ListNews(ctx context.Context, offset, limit int) ([]model.News, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	var total int64
	if err := p.db.WithContext(ctx).Model(&model.News{}).Count(&total).Error; err != nil {
		return nil, 0, apperrors.WrapInternal(err, "ListNews count")
	}

	var items []model.News
	res := p.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&items)
	if err := res.Error; err != nil {
		return nil, 0, apperrors.WrapInternal(err, "ListNews")
	}
	return items, total, nil
}

func (p *NewsRepo) UpdateNews(ctx context.Context, item model.News) error {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	res := p.db.WithContext(ctx).Save(&item)
	if err := res.Error; err != nil {
		return apperrors.WrapInternal(err, "UpdateNews")
	}
	return nil
}

func (p *NewsRepo) DeleteNews(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	res := p.db.WithContext(ctx).Delete(&model.News{}, "id = ?", id)
	if err := res.Error; err != nil {
		return apperrors.WrapInternal(err, "DeleteNews")
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
