package models

import (
	"time"
)

const (
	NoticeScopeGlobal     = "global"
	NoticeScopeIndividual = "individual"
)

type Notice struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	PublicID  string         `gorm:"type:varchar(40);not null;uniqueIndex" json:"public_id"`
	Scope     string         `gorm:"type:varchar(20);not null;default:'global'" json:"scope"`
	Title     *string        `gorm:"type:varchar(100)" json:"title,omitempty"`
	Message   string         `gorm:"type:text;not null" json:"message"`
	Priority  int            `gorm:"not null;default:0" json:"priority"`
	Active    bool           `gorm:"not null;default:true" json:"active"`
	ExpiresAt *time.Time     `json:"expires_at,omitempty"`
	Targets   []NoticeTarget `gorm:"foreignKey:NoticeID" json:"targets,omitempty"`
	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
}

// NoticeTarget restricts an individual-scope notice to specific companies.
type NoticeTarget struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	NoticeID  uint `gorm:"not null;index:idx_notice_target,unique" json:"notice_id"`
	CompanyID uint `gorm:"not null;index:idx_notice_target,unique" json:"company_id"`
}

// NoticeRead records a company's "don't show again" confirmation.
type NoticeRead struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	NoticeID  uint      `gorm:"not null;index:idx_notice_read,unique" json:"notice_id"`
	CompanyID uint      `gorm:"not null;index:idx_notice_read,unique" json:"company_id"`
	ReadAt    time.Time `gorm:"not null" json:"read_at"`
}

// VisibleTo reports whether the notice should still reach the company.
func (n *Notice) VisibleTo(companyID uint, now time.Time) bool {
	if !n.Active {
		return false
	}
	if n.ExpiresAt != nil && now.After(*n.ExpiresAt) {
		return false
	}
	if n.Scope != NoticeScopeIndividual {
		return true
	}
	for _, t := range n.Targets {
		if t.CompanyID == companyID {
			return true
		}
	}
	return false
}
