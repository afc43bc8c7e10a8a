package models

import "time"

// Category: Menü kategorisi (ör: "Sıcak İçecekler", "Tatlılar")
type Category struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:100;not null;unique"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Products []Product
}
