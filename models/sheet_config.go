package models

import (
	"time"
)

// SheetConfig is an opaque export-sheet record round-tripped by the admin
// settings tab.
type SheetConfig struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(100);not null" json:"name"`
	SheetURL  string    `gorm:"type:varchar(255);not null" json:"sheet_url"`
	Active    bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}
