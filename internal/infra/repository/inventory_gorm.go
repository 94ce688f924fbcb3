package repository

import (
	"context"

	"electrohub/internal/domain/model"
	repo "electrohub/internal/repository"

	"gorm.io/gorm"
)

type InventoryGormRepository struct {
	db *gorm.DB
}

func NewInventoryGormRepository(db *gorm.DB) *InventoryGormRepository {
	return &InventoryGormRepository{db: db}
}

// 在庫の現在値を設定
func (r *InventoryGormRepository) SetStock(ctx context.Context, productID int64, newStock int64) error {
	updates := map[string]interface{}{"stock": newStock}

	//statusキャッシュもここで揃える
	if newStock == 0 {
		updates["status"] = model.ProductStatusOutOfStock
	}

	res := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("id = ?", productID).
		Updates(updates)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}

	//0から復帰した場合はACTIVEに戻す
	if newStock > 0 {
		return r.db.WithContext(ctx).
			Model(&model.Product{}).
			Where("id = ? AND status = ?", productID, model.ProductStatusOutOfStock).
			Update("status", model.ProductStatusActive).Error
	}
	return nil
}

// 在庫が足りるときだけ減らす
func (r *InventoryGormRepository) DecreaseStockIfEnough(ctx context.Context, productID int64, qty int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("id = ? AND stock >= ?", productID, qty).
		Update("stock", gorm.Expr("stock - ?", qty))

	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	return true, nil
}

// 在庫戻し（キャンセル）
func (r *InventoryGormRepository) IncreaseStock(ctx context.Context, productID int64, qty int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("id = ?", productID).
		Update("stock", gorm.Expr("stock + ?", qty))

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}

	//OUT_OF_STOCKから復帰
	return r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("id = ? AND status = ? AND stock > 0", productID, model.ProductStatusOutOfStock).
		Update("status", model.ProductStatusActive).Error
}

// 購入した商品のうち在庫0になったものだけをOUT_OF_STOCKにする
func (r *InventoryGormRepository) MarkOutOfStock(ctx context.Context, productIDs []int64) error {
	if len(productIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("id IN ? AND stock = 0", productIDs).
		Update("status", model.ProductStatusOutOfStock).Error
}

// 調整履歴作成
func (r *InventoryGormRepository) CreateAdjustment(ctx context.Context, adj model.InventoryAdjustment) error {
	if err := r.db.WithContext(ctx).Create(&adj).Error; err != nil {
		return err
	}
	return nil
}
