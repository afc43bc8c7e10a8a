package models

import "time"

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderConfirmed OrderStatus = "confirmed"
	OrderPreparing OrderStatus = "preparing"
	OrderReady     OrderStatus = "ready"
	OrderCompleted OrderStatus = "completed"
	OrderCancelled OrderStatus = "cancelled"
)

// allowedTransitions: Durum makinesi. completed ve cancelled terminal durumlardır,
// cancelled her terminal olmayan durumdan erişilebilir.
var allowedTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:   {OrderConfirmed, OrderCancelled},
	OrderConfirmed: {OrderPreparing, OrderCancelled},
	OrderPreparing: {OrderReady, OrderCancelled},
	OrderReady:     {OrderCompleted, OrderCancelled},
	OrderCompleted: {},
	OrderCancelled: {},
}

func (s OrderStatus) IsValid() bool {
	_, ok := allowedTransitions[s]
	return ok
}

func (s OrderStatus) IsTerminal() bool {
	return s == OrderCompleted || s == OrderCancelled
}

// CanTransitionTo: s durumundan target durumuna geçiş izni var mı?
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	for _, t := range allowedTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// Order: Müşteri siparişi. TableID nil ise paket (takeaway) siparişidir.
// Total her zaman satırlardan türetilir, asla elle girilmez.
// Sipariş fiziksel olarak silinmez; iptal bir durumdur (cancelled).
type Order struct {
	ID        uint   `gorm:"primaryKey"`
	TableID   *uint  `gorm:"index"`
	Table     *Table
	Status    OrderStatus `gorm:"size:20;not null;default:pending;index"`
	Total     float64     `gorm:"not null"`
	CreatedAt time.Time   `gorm:"index"`
	UpdatedAt time.Time

	Items []OrderItem
}
