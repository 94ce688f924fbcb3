package repository

import (
	"context"

	"electrohub/internal/domain/model"
)

type OrderItemRepository interface {
	CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error
	ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error)
	FindByID(ctx context.Context, orderItemID int64) (model.OrderItem, error)
	UpdateStatus(ctx context.Context, orderItemID int64, status model.OrderItemStatus) error
}
