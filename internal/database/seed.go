package database

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"go-fund-registry-service/internal/domain"
)

type SeedReport struct {
	Noop               bool
	CreatedFunds       int
	CreatedInvestors   int
	CreatedInvestments int
}

// SeedSync loads the demo data set. It is a no-op when any fund already
// exists, so it is safe to run on every start.
func SeedSync(db *gorm.DB) (*SeedReport, error) {
	report := &SeedReport{}

	var fundCount int64
	if err := db.Model(&domain.Fund{}).Count(&fundCount).Error; err != nil {
		return nil, fmt.Errorf("count funds: %w", err)
	}
	if fundCount > 0 {
		report.Noop = true
		return report, nil
	}

	funds := []domain.Fund{
		{Name: "Meridian Growth Fund I", VintageYear: 2024, TargetSizeUSD: decimal.NewFromInt(250_000_000), Status: domain.FundStatusFundraising},
		{Name: "Meridian Venture Fund II", VintageYear: 2023, TargetSizeUSD: decimal.NewFromInt(150_000_000), Status: domain.FundStatusInvesting},
		{Name: "Meridian Capital Fund 2022", VintageYear: 2022, TargetSizeUSD: decimal.NewFromInt(100_000_000), Status: domain.FundStatusClosed},
	}
	investors := []domain.Investor{
		{Name: "Harborview Asset Management", InvestorType: domain.InvestorTypeInstitution, Email: "investments@harborview.example"},
		{Name: "Northern Pension Trust", InvestorType: domain.InvestorTypeInstitution, Email: "privateequity@npt.example"},
		{Name: "Caldera Family Office", InvestorType: domain.InvestorTypeFamilyOffice, Email: "allocations@caldera.example"},
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		for i := range funds {
			if err := tx.Create(&funds[i]).Error; err != nil {
				return fmt.Errorf("seed fund %q: %w", funds[i].Name, err)
			}
			report.CreatedFunds++
		}
		for i := range investors {
			if err := tx.Create(&investors[i]).Error; err != nil {
				return fmt.Errorf("seed investor %q: %w", investors[i].Name, err)
			}
			report.CreatedInvestors++
		}

		investments := []domain.Investment{
			{FundID: funds[0].ID, InvestorID: investors[0].ID, AmountUSD: decimal.NewFromInt(25_000_000), InvestmentDate: date(2024, 3, 15)},
			{FundID: funds[0].ID, InvestorID: investors[1].ID, AmountUSD: decimal.NewFromInt(40_000_000), InvestmentDate: date(2024, 5, 2)},
			{FundID: funds[1].ID, InvestorID: investors[2].ID, AmountUSD: decimal.NewFromInt(10_000_000), InvestmentDate: date(2023, 11, 20)},
		}
		for i := range investments {
			if err := tx.Create(&investments[i]).Error; err != nil {
				return fmt.Errorf("seed investment %d: %w", i, err)
			}
			report.CreatedInvestments++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
