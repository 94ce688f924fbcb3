package repository

import (
	"context"

	"electrohub/internal/domain/model"
)

type InventoryRepository interface {
	// 在庫の現在値を設定
	SetStock(ctx context.Context, productID int64, newStock int64) error

	// 在庫が足りるときだけ減算（1文のUPDATEで行う）
	DecreaseStockIfEnough(ctx context.Context, productID int64, qty int64) (bool, error)

	// 在庫戻し（キャンセルなど）
	IncreaseStock(ctx context.Context, productID int64, qty int64) error

	// 指定商品のうち在庫が0になったものをOUT_OF_STOCKにする。
	// 対象は購入した商品だけ（全商品を走査しない）
	MarkOutOfStock(ctx context.Context, productIDs []int64) error

	// 調整履歴作成
	CreateAdjustment(ctx context.Context, adjustment model.InventoryAdjustment) error
}
