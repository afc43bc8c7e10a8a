package models

import "time"

type TableStatus string

const (
	TableAvailable TableStatus = "available"
	TableOccupied  TableStatus = "occupied"
)

// Table: Restoran masası.
// Status yalnızca sipariş akışı tarafından değiştirilir (sipariş açılınca occupied,
// masadaki son aktif sipariş kapanınca available). Masa endpoint'leri status yazamaz.
type Table struct {
	ID        uint `gorm:"primaryKey"`
	ZoneID    uint `gorm:"index;not null"`
	Zone      Zone
	Name      string      `gorm:"size:50;not null"`
	Status    TableStatus `gorm:"size:20;not null;default:available"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
