package model

import "time"

// 明細ごとの配送ステータス
type OrderItemStatus string

const (
	OrderItemStatusConfirmed OrderItemStatus = "ORDER_CONFIRMED"
	OrderItemStatusShipped   OrderItemStatus = "SHIPPED"
	OrderItemStatusDelivered OrderItemStatus = "DELIVERED"
	OrderItemStatusReturned  OrderItemStatus = "RETURNED"
	OrderItemStatusCanceled  OrderItemStatus = "CANCELED"
)

type OrderItem struct {
	ID                  int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID             int64           `gorm:"not null;index" json:"order_id"`
	ProductID           int64           `gorm:"not null;index" json:"product_id"`
	ProductNameSnapshot string          `gorm:"type:varchar(255);not null" json:"product_name_snapshot"`
	UnitPriceSnapshot   int64           `gorm:"not null" json:"unit_price_snapshot"`
	Quantity            int64           `gorm:"not null" json:"quantity"`
	Status              OrderItemStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	CreatedAt           time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
