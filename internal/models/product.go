package models

import "time"

// Product: Menüdeki satış ürünü. Price o anki satış fiyatıdır; sipariş satırlarına
// kopyalanır, sonradan değişmesi eski siparişleri etkilemez.
type Product struct {
	ID          uint `gorm:"primaryKey"`
	CategoryID  uint `gorm:"index;not null"`
	Category    Category
	Name        string  `gorm:"size:100;not null;unique"`
	Price       float64 `gorm:"not null"`
	IsAvailable bool    `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
