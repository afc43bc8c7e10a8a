package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Ingredient: Hammadde (ör: süt, kahve çekirdeği).
// CurrentStock ve CostPrice yalnızca envanter defteri (ledger) üzerinden değişir.
// CostPrice hareketli ağırlıklı ortalama birim maliyettir; sadece IMPORT işleminde
// güncellenir. CurrentStock, hasar/sayım düzeltmeleriyle geçici olarak negatife
// düşebilir.
type Ingredient struct {
	ID           uint            `gorm:"primaryKey"`
	Name         string          `gorm:"size:100;not null;unique"`
	Unit         string          `gorm:"size:20;not null"` // kg, lt, adet vs.
	CurrentStock decimal.Decimal `gorm:"type:decimal(20,4);default:0"`
	MinStock     decimal.Decimal `gorm:"type:decimal(20,4);default:0"` // düşük stok uyarı eşiği
	CostPrice    decimal.Decimal `gorm:"type:decimal(20,4);default:0"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
