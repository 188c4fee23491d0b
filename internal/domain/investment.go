package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Investment is owned by the Fund/Investor pair it references; both foreign
// keys are enforced at the schema level and re-checked inside the guarded
// write transaction.
type Investment struct {
	ID             string          `gorm:"type:uuid;primaryKey" json:"id"`
	FundID         string          `gorm:"type:uuid;not null;index" json:"fund_id"`
	InvestorID     string          `gorm:"type:uuid;not null;index" json:"investor_id"`
	AmountUSD      decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"amount_usd"`
	InvestmentDate time.Time       `gorm:"not null" json:"investment_date"`
	CreatedAt      time.Time       `json:"created_at"`

	Fund     *Fund     `gorm:"foreignKey:FundID;constraint:OnDelete:RESTRICT" json:"-"`
	Investor *Investor `gorm:"foreignKey:InvestorID;constraint:OnDelete:RESTRICT" json:"-"`
}

func (i *Investment) BeforeCreate(*gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}
