package audit

import (
	"encoding/json"
	"fmt"

	"cafepos-backend/internal/models"

	"gorm.io/gorm"
)

type ItemEditLog struct {
	OrderID     uint
	OrderItemID uint
	UserID      uint
	UserName    string
	Action      models.OrderItemAuditAction
	Reason      string
	Before      any
	After       any
}

// WriteItemEdit: Sipariş satırı düzenlemesini denetim kaydına yazar.
// Düzenlemeyle aynı transaction içinde çağrılır; gerekçesiz düzenleme kalıcı olamaz.
func WriteItemEdit(tx *gorm.DB, opts ItemEditLog) error {
	// PostgreSQL jsonb için boş string yerine "null" JSON string'i kullanmalıyız
	beforeStr := "null"
	afterStr := "null"

	if opts.Before != nil {
		if b, err := json.Marshal(opts.Before); err == nil {
			beforeStr = string(b)
		}
	}
	if opts.After != nil {
		if b, err := json.Marshal(opts.After); err == nil {
			afterStr = string(b)
		}
	}

	log := models.OrderItemAudit{
		OrderID:     opts.OrderID,
		OrderItemID: opts.OrderItemID,
		UserID:      opts.UserID,
		UserName:    opts.UserName,
		Action:      opts.Action,
		Reason:      opts.Reason,
		BeforeData:  beforeStr,
		AfterData:   afterStr,
	}

	if err := tx.Create(&log).Error; err != nil {
		return fmt.Errorf("denetim kaydı yazılamadı: %w", err)
	}

	return nil
}
