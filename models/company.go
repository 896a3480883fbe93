package models

import (
	"time"
)

// Company status values used by the approval workflow.
const (
	CompanyPending  = "pending"
	CompanyApproved = "approved"
	CompanyRejected = "rejected"
)

type Company struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	Name          string     `gorm:"type:varchar(100);not null;uniqueIndex" json:"name"`
	PasswordHash  string     `gorm:"type:varchar(100);not null" json:"-"`
	Status        string     `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	RejectReason  string     `gorm:"type:varchar(255)" json:"reject_reason,omitempty"`
	OrderBlocked  bool       `gorm:"not null;default:false" json:"order_blocked"`
	BlockReason   string     `gorm:"type:varchar(255)" json:"block_reason,omitempty"`
	GroupID       *uint      `gorm:"index" json:"group_id,omitempty"`
	Group         *ItemGroup `gorm:"foreignKey:GroupID" json:"group,omitempty"`
	ContactName   string     `gorm:"type:varchar(50)" json:"contact_name"`
	Phone         string     `gorm:"type:varchar(30)" json:"phone"`
	PostalCode    string     `gorm:"type:varchar(10)" json:"postal_code"`
	Address       string     `gorm:"type:varchar(255)" json:"address"`
	AddressDetail string     `gorm:"type:varchar(255)" json:"address_detail"`
	Attachment    string     `gorm:"type:varchar(255)" json:"attachment,omitempty"`
	ReferenceCode string     `gorm:"type:varchar(40)" json:"reference_code"`
	CreatedAt     time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"not null" json:"updated_at"`
}

func (co *Company) IsApproved() bool {
	return co.Status == CompanyApproved
}
