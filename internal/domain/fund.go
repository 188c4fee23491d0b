package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type FundStatus string

const (
	FundStatusFundraising FundStatus = "Fundraising"
	FundStatusInvesting   FundStatus = "Investing"
	FundStatusClosed      FundStatus = "Closed"
)

func (s FundStatus) Valid() bool {
	switch s {
	case FundStatusFundraising, FundStatusInvesting, FundStatusClosed:
		return true
	}
	return false
}

// Fund is a pooled investment vehicle. Once its status reaches Closed no new
// investment may reference it; that invariant is enforced inside the
// investment write transaction, not here.
type Fund struct {
	ID            string          `gorm:"type:uuid;primaryKey" json:"id"`
	Name          string          `gorm:"size:256;not null" json:"name"`
	VintageYear   int             `gorm:"not null" json:"vintage_year"`
	TargetSizeUSD decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"target_size_usd"`
	Status        FundStatus      `gorm:"size:32;not null;default:Fundraising;index" json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (f *Fund) BeforeCreate(*gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}
