package model

import "time"

type Order struct {
	ID     int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID int64 `gorm:"not null;index" json:"user_id"`

	//作成後は不変。明細スナップショットの合計（buy経路は申告値）
	TotalPrice int64 `gorm:"not null" json:"total_price"`

	RazorpayOrderID string `gorm:"type:varchar(255);not null" json:"razorpay_order_id"`

	//決済IDをユニークにして二重注文を防ぐ（冪等キー）
	RazorpayPaymentID string `gorm:"type:varchar(255);not null;uniqueIndex" json:"razorpay_payment_id"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
