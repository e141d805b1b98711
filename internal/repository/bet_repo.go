package repository

import (
	"context"

	"QuenoClient/internal/model"

	"gorm.io/gorm"
)

// BetRepository 下注归档持久化
type BetRepository interface {
	CreateBetRecord(ctx context.Context, record *model.BetRecord) error
	GetByBetID(ctx context.Context, betID string) (*model.BetRecord, error)
	ListByUser(ctx context.Context, userWallet string, page, pageSize int) ([]*model.BetRecord, int64, error)
}

type betRepository struct {
	db *gorm.DB
}

// NewBetRepository 创建下注归档仓储
func NewBetRepository(db *gorm.DB) BetRepository {
	return &betRepository{db: db}
}

func (r *betRepository) CreateBetRecord(ctx context.Context, record *model.BetRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *betRepository) GetByBetID(ctx context.Context, betID string) (*model.BetRecord, error) {
	var rec model.BetRecord
	if err := r.db.WithContext(ctx).Where("bet_id = ?", betID).First(&rec).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *betRepository) ListByUser(ctx context.Context, userWallet string, page, pageSize int) ([]*model.BetRecord, int64, error) {
	page, pageSize = NormalizePage(page, pageSize)
	db := r.db.WithContext(ctx).Model(&model.BetRecord{}).Where("user_wallet = ?", userWallet).Session(&gorm.Session{})
	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var list []*model.BetRecord
	if err := db.Order("resolved_at DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// NormalizePage 分页参数兜底：page 从 1 开始，page_size 默认 20、最大 100
func NormalizePage(page, pageSize int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}
