package models

import "time"

type OrderItemAuditAction string

const (
	ItemAuditDelete         OrderItemAuditAction = "delete"
	ItemAuditUpdateQuantity OrderItemAuditAction = "update_quantity"
	ItemAuditUpdateNote     OrderItemAuditAction = "update_note"
)

// OrderItemAudit: Sipariş satırı düzenleme kaydı. Her düzenleme zorunlu bir
// gerekçeyle (Reason) loglanır; geri alma yoktur, düzeltme yeni bir düzenlemedir.
type OrderItemAudit struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`

	OrderID     uint `gorm:"index" json:"order_id"`
	OrderItemID uint `gorm:"index" json:"order_item_id"`

	UserID   uint   `json:"user_id"`
	UserName string `gorm:"size:100" json:"user_name"` // kullanıcı adı (denormalize)

	Action OrderItemAuditAction `gorm:"size:20" json:"action"`
	Reason string               `gorm:"size:500;not null" json:"reason"`

	// Önceki ve sonraki hal (JSON)
	BeforeData string `gorm:"type:jsonb" json:"before_data"`
	AfterData  string `gorm:"type:jsonb" json:"after_data"`
}
