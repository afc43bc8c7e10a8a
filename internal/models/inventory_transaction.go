package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type InventoryTransactionType string

const (
	TxImport       InventoryTransactionType = "import"
	TxExportDamage InventoryTransactionType = "export_damage"
	TxExportSales  InventoryTransactionType = "export_sales"
	TxAudit        InventoryTransactionType = "audit"
)

func (t InventoryTransactionType) IsValid() bool {
	switch t {
	case TxImport, TxExportDamage, TxExportSales, TxAudit:
		return true
	}
	return false
}

// InventoryTransaction: Stok hareket kaydı. Append-only; asla güncellenmez veya
// silinmez, stok değişikliklerinin denetim izi budur.
// Change işaret kuralı: import pozitif, export_damage/export_sales negatif,
// audit sayım farkına göre her iki işaret olabilir.
// TotalValue sadece import işleminde doludur (parti toplam maliyeti).
type InventoryTransaction struct {
	ID           uint `gorm:"primaryKey"`
	IngredientID uint `gorm:"index;not null"`
	Ingredient   Ingredient
	Type         InventoryTransactionType `gorm:"size:20;not null;index"`
	Change       decimal.Decimal          `gorm:"type:decimal(20,4);not null"`
	TotalValue   decimal.Decimal          `gorm:"type:decimal(20,4);default:0"`
	Note         string                   `gorm:"size:500"`
	CreatedBy    uint                     `gorm:"not null"` // işlemi yapan kullanıcı
	CreatedAt    time.Time                `gorm:"index"`
}
