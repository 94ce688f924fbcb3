package repository

import (
	"context"

	"electrohub/internal/domain/model"
)

type OrderRepository interface {
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Order, int64, error)
	Create(ctx context.Context, order model.Order) (int64, error)

	//決済IDで検索（同じ決済なら同じ注文を返す）
	FindByPaymentID(ctx context.Context, paymentID string) (model.Order, bool, error)
}
