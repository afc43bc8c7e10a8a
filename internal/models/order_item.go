package models

import "time"

// OrderItem: Sipariş satırı. UnitPrice sipariş oluşturulduğu andaki ürün fiyatıdır;
// menü fiyatı sonradan değişse de satır fiyatı sabit kalır.
// IsServed true olduktan sonra satır kilitlenir, hiçbir düzenleme kabul edilmez.
type OrderItem struct {
	ID        uint `gorm:"primaryKey"`
	OrderID   uint `gorm:"index;not null"`
	ProductID uint `gorm:"index;not null"`
	Product   Product
	Quantity  int     `gorm:"not null"`
	UnitPrice float64 `gorm:"not null"`
	Note      string  `gorm:"size:255"`
	IsServed  bool    `gorm:"not null;default:false"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
