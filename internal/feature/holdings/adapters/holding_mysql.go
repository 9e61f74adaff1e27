// Package adapters は保有銘柄のリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"stock_portfolio/internal/feature/holdings/domain"
	"stock_portfolio/internal/feature/holdings/domain/entity"
	"stock_portfolio/internal/feature/holdings/usecase"
)

// holdingMySQL はHoldingRepositoryインターフェースのGORM実装です。
// MySQL / PostgreSQL / SQLite のいずれのダイアレクトでも動作します。
type holdingMySQL struct {
	db *gorm.DB
}

var _ usecase.HoldingRepository = (*holdingMySQL)(nil)

// NewHoldingRepository は指定されたgorm.DB接続でリポジトリを生成します。
func NewHoldingRepository(db *gorm.DB) *holdingMySQL {
	return &holdingMySQL{db: db}
}

// HoldingModel はholdingsテーブルの行です。
type HoldingModel struct {
	ID           uint    `gorm:"primaryKey"`
	Ticker       string  `gorm:"size:32;not null;index"`
	CompanyName  string  `gorm:"size:255;not null"`
	Quantity     int64   `gorm:"not null;default:1"`
	BuyPrice     float64 `gorm:"not null"`
	CurrentPrice float64 `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (HoldingModel) TableName() string {
	return "holdings"
}

func toModel(e entity.Holding) HoldingModel {
	return HoldingModel{
		ID:           e.ID,
		Ticker:       e.Ticker,
		CompanyName:  e.CompanyName,
		Quantity:     e.Quantity,
		BuyPrice:     e.BuyPrice,
		CurrentPrice: e.CurrentPrice,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}

func toEntity(m HoldingModel) entity.Holding {
	return entity.Holding{
		ID:           m.ID,
		Ticker:       m.Ticker,
		CompanyName:  m.CompanyName,
		Quantity:     m.Quantity,
		BuyPrice:     m.BuyPrice,
		CurrentPrice: m.CurrentPrice,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// Save はIDが0なら新規作成し、それ以外は既存行の全カラムを上書きします。
// 上書き対象の行が存在しない場合は domain.ErrNotFound を返します。
func (r *holdingMySQL) Save(ctx context.Context, h entity.Holding) (entity.Holding, error) {
	m := toModel(h)
	if m.ID == 0 {
		if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
			return entity.Holding{}, fmt.Errorf("create holding: %w", err)
		}
		return toEntity(m), nil
	}

	res := r.db.WithContext(ctx).
		Model(&HoldingModel{ID: m.ID}).
		Select("ticker", "company_name", "quantity", "buy_price", "current_price", "updated_at").
		Updates(&m)
	if res.Error != nil {
		return entity.Holding{}, fmt.Errorf("update holding %d: %w", m.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return entity.Holding{}, domain.ErrNotFound
	}

	saved, err := r.FindByID(ctx, m.ID)
	if err != nil {
		return entity.Holding{}, err
	}
	return *saved, nil
}

// FindByID はIDで保有銘柄を取得します。
// 存在しない場合は domain.ErrNotFound を返します。
func (r *holdingMySQL) FindByID(ctx context.Context, id uint) (*entity.Holding, error) {
	var m HoldingModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	h := toEntity(m)
	return &h, nil
}

// FindAll はID昇順で全件を返します。
func (r *holdingMySQL) FindAll(ctx context.Context) ([]entity.Holding, error) {
	var rows []HoldingModel
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]entity.Holding, 0, len(rows))
	for _, m := range rows {
		out = append(out, toEntity(m))
	}
	return out, nil
}

// DeleteByID は指定IDの行を削除します。
func (r *holdingMySQL) DeleteByID(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&HoldingModel{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateCurrentPrice は現在価格の列のみを更新します。
// 同期処理がユーザーによる更新を上書きしないよう、他の列には触れません。
func (r *holdingMySQL) UpdateCurrentPrice(ctx context.Context, id uint, price float64) error {
	res := r.db.WithContext(ctx).
		Model(&HoldingModel{}).
		Where("id = ?", id).
		Update("current_price", price)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
