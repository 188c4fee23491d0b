package service

import (
	"context"
	"errors"
	"sort"

	"github.com/shopspring/decimal"

	"go-fund-registry-service/internal/apperror"
	"go-fund-registry-service/internal/repository"
)

type InvestorTypeBreakdown struct {
	Count      int             `json:"count"`
	Total      decimal.Decimal `json:"total"`
	Percentage decimal.Decimal `json:"percentage"`
}

type TopInvestor struct {
	InvestorID    string          `json:"investor_id"`
	InvestorName  string          `json:"investor_name"`
	TotalInvested decimal.Decimal `json:"total_invested"`
	Percentage    decimal.Decimal `json:"percentage"`
	Rank          int             `json:"rank"`
}

type InvestorFee struct {
	InvestorID   string          `json:"investor_id"`
	InvestorName string          `json:"investor_name"`
	Fee          decimal.Decimal `json:"fee"`
	Percentage   decimal.Decimal `json:"percentage"`
}

type FeeDistribution struct {
	TotalManagementFee decimal.Decimal `json:"total_management_fee"`
	ByInvestor         []InvestorFee   `json:"by_investor"`
}

type FundAnalytics struct {
	FundID            string                           `json:"fund_id"`
	TotalRaised       decimal.Decimal                  `json:"total_raised"`
	TargetSize        decimal.Decimal                  `json:"target_size"`
	UtilizationPct    decimal.Decimal                  `json:"utilization_pct"`
	InvestorCount     int                              `json:"investor_count"`
	AverageInvestment decimal.Decimal                  `json:"average_investment"`
	TopInvestors      []TopInvestor                    `json:"top_investors"`
	ByInvestorType    map[string]InvestorTypeBreakdown `json:"by_investor_type"`
	FeeDistribution   FeeDistribution                  `json:"fee_distribution"`
}

// managementFeeRate is the flat 2% annual fee charged on committed capital.
var managementFeeRate = decimal.NewFromFloat(0.02)

type AnalyticsService interface {
	FundAnalytics(ctx context.Context, fundID string) (*FundAnalytics, error)
}

type analyticsService struct {
	funds       repository.FundRepository
	investments repository.InvestmentRepository
}

func NewAnalyticsService(funds repository.FundRepository, investments repository.InvestmentRepository) AnalyticsService {
	return &analyticsService{funds: funds, investments: investments}
}

func (s *analyticsService) FundAnalytics(ctx context.Context, fundID string) (*FundAnalytics, error) {
	fund, err := s.funds.FindByID(ctx, fundID)
	if err != nil {
		if errors.Is(err, repository.ErrFundNotFound) {
			return nil, apperror.NotFound("fund not found")
		}
		return nil, apperror.Internal("failed to load fund", err)
	}

	investments, err := s.investments.ListByFundWithInvestors(ctx, fundID)
	if err != nil {
		return nil, apperror.Internal("failed to load investments", err)
	}

	out := &FundAnalytics{
		FundID:         fund.ID,
		TargetSize:     fund.TargetSizeUSD,
		ByInvestorType: map[string]InvestorTypeBreakdown{},
		TopInvestors:   []TopInvestor{},
	}
	if len(investments) == 0 {
		out.TotalRaised = decimal.Zero
		out.UtilizationPct = decimal.Zero
		out.AverageInvestment = decimal.Zero
		out.FeeDistribution = FeeDistribution{TotalManagementFee: decimal.Zero, ByInvestor: []InvestorFee{}}
		return out, nil
	}

	totalRaised := decimal.Zero
	perInvestor := map[string]*investorAgg{}
	order := []string{}
	for _, inv := range investments {
		totalRaised = totalRaised.Add(inv.AmountUSD)
		agg, ok := perInvestor[inv.InvestorID]
		if !ok {
			name, typ := "", ""
			if inv.Investor != nil {
				name = inv.Investor.Name
				typ = inv.Investor.InvestorType.APIValue()
			}
			agg = &investorAgg{name: name, typ: typ}
			perInvestor[inv.InvestorID] = agg
			order = append(order, inv.InvestorID)
		}
		agg.total = agg.total.Add(inv.AmountUSD)
	}

	out.TotalRaised = totalRaised.Round(2)
	out.InvestorCount = len(investments)
	if fund.TargetSizeUSD.IsPositive() {
		out.UtilizationPct = totalRaised.Div(fund.TargetSizeUSD).Mul(decimal.NewFromInt(100)).Round(1)
	}
	out.AverageInvestment = totalRaised.Div(decimal.NewFromInt(int64(len(investments)))).Round(2)

	hundred := decimal.NewFromInt(100)
	for _, inv := range investments {
		agg := perInvestor[inv.InvestorID]
		entry := out.ByInvestorType[agg.typ]
		entry.Count++
		entry.Total = entry.Total.Add(inv.AmountUSD).Round(2)
		out.ByInvestorType[agg.typ] = entry
	}
	for typ, entry := range out.ByInvestorType {
		entry.Percentage = entry.Total.Div(totalRaised).Mul(hundred).Round(1)
		out.ByInvestorType[typ] = entry
	}

	ranked := make([]TopInvestor, 0, len(order))
	for _, id := range order {
		agg := perInvestor[id]
		ranked = append(ranked, TopInvestor{
			InvestorID:    id,
			InvestorName:  agg.name,
			TotalInvested: agg.total.Round(2),
			Percentage:    agg.total.Div(totalRaised).Mul(hundred).Round(1),
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].TotalInvested.GreaterThan(ranked[j].TotalInvested)
	})
	if len(ranked) > 5 {
		ranked = ranked[:5]
	}
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	out.TopInvestors = ranked

	totalFee := totalRaised.Mul(managementFeeRate).Round(2)
	out.FeeDistribution = FeeDistribution{
		TotalManagementFee: totalFee,
		ByInvestor:         allocateManagementFees(totalFee, totalRaised, order, perInvestor),
	}
	return out, nil
}

type investorAgg struct {
	name  string
	typ   string
	total decimal.Decimal
}

// allocateManagementFees splits the fee pro-rata by invested amount using
// largest-remainder rounding, so the cent amounts always sum to the total
// fee exactly.
func allocateManagementFees(
	totalFee, totalRaised decimal.Decimal,
	order []string,
	perInvestor map[string]*investorAgg,
) []InvestorFee {
	if totalFee.IsZero() || totalRaised.IsZero() || len(order) == 0 {
		return []InvestorFee{}
	}

	hundred := decimal.NewFromInt(100)
	fees := make([]InvestorFee, len(order))
	remainders := make([]decimal.Decimal, len(order))
	allocated := decimal.Zero
	for i, id := range order {
		agg := perInvestor[id]
		share := agg.total.Div(totalRaised)
		exact := totalFee.Mul(share)
		floor := exact.RoundDown(2)
		fees[i] = InvestorFee{
			InvestorID:   id,
			InvestorName: agg.name,
			Fee:          floor,
			Percentage:   share.Mul(hundred).Round(1),
		}
		remainders[i] = exact.Sub(floor)
		allocated = allocated.Add(floor)
	}

	// Hand out the leftover cents to the largest remainders first; ties
	// go to the earlier investor for determinism.
	leftoverCents := totalFee.Sub(allocated).Mul(hundred).IntPart()
	idx := make([]int, len(order))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return remainders[idx[a]].GreaterThan(remainders[idx[b]])
	})
	cent := decimal.New(1, -2)
	for i := int64(0); i < leftoverCents && int(i) < len(idx); i++ {
		fees[idx[i]].Fee = fees[idx[i]].Fee.Add(cent)
	}
	return fees
}
