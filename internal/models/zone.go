package models

import "time"

// Zone: Masaların gruplandığı bölge (ör: "Bahçe", "Teras", "Salon")
type Zone struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:100;not null;unique"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Tables []Table
}
