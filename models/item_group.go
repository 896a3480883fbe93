package models

import (
	"time"
)

// ItemGroup is a reusable bundle of items assigned to companies at approval.
type ItemGroup struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Name        string          `gorm:"type:varchar(100);not null;uniqueIndex" json:"name"`
	Description string          `gorm:"type:varchar(255)" json:"description"`
	Entries     []ItemGroupItem `gorm:"foreignKey:GroupID" json:"entries"`
	CreatedAt   time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"not null" json:"updated_at"`
}

type ItemGroupItem struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	GroupID uint `gorm:"not null;index:idx_group_item,unique" json:"group_id"`
	ItemID  uint `gorm:"not null;index:idx_group_item,unique" json:"item_id"`
	Item    Item `gorm:"foreignKey:ItemID" json:"item"`
}
