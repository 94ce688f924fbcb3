package model

import (
	"time"

	"gorm.io/gorm"
)

type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "ACTIVE"
	ProductStatusInactive ProductStatus = "INACTIVE"
	//stock == 0 の非正規化キャッシュ。在庫更新と同じトランザクションで揃える
	ProductStatusOutOfStock ProductStatus = "OUT_OF_STOCK"
)

type Product struct {
	ID          int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	SellerID    int64  `gorm:"not null;index" json:"seller_id"`
	Name        string `gorm:"type:varchar(255);not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	Price       int64  `gorm:"not null" json:"price"`

	//値引き額（販売価格 = Price - Discount）
	Discount int64 `gorm:"not null;default:0" json:"discount"`

	Stock     int64          `gorm:"not null" json:"stock"`
	Status    ProductStatus  `gorm:"type:varchar(20);not null;index" json:"status"`
	CreatedAt time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// 販売価格（値引き後）
func (p Product) SalePrice() int64 {
	price := p.Price - p.Discount
	if price < 0 {
		return 0
	}
	return price
}
