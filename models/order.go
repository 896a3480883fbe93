package models

import (
	"time"
)

// Order holds one company's lines for one calendar day. Saving an order is
// always a full replacement of its lines, never a diff.
type Order struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	CompanyID uint        `gorm:"not null;index:idx_company_date,unique" json:"company_id"`
	Company   Company     `gorm:"foreignKey:CompanyID" json:"company"`
	OrderDate string      `gorm:"type:varchar(10);not null;index:idx_company_date,unique" json:"order_date"`
	Items     []OrderItem `gorm:"foreignKey:OrderID" json:"items"`
	CreatedAt time.Time   `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time   `gorm:"not null" json:"updated_at"`
}

type OrderItem struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	OrderID  uint   `gorm:"not null;index" json:"order_id"`
	ItemName string `gorm:"type:varchar(100);not null" json:"item_name"`
	Quantity int    `gorm:"not null" json:"quantity"`
}
