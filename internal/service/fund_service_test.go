package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"go-fund-registry-service/internal/apperror"
	"go-fund-registry-service/internal/domain"
	"go-fund-registry-service/internal/repository"
)

func newFundServiceForTest(t *testing.T) FundService {
	t.Helper()
	db := newServiceDBForTest(t)
	return NewFundService(repository.NewFundRepository(db), discardLogger())
}

func TestFundServiceCreateDefaultsToFundraising(t *testing.T) {
	svc := newFundServiceForTest(t)

	fund, err := svc.Create(context.Background(), CreateFundInput{
		Name:          "Meridian Growth IV",
		VintageYear:   2025,
		TargetSizeUSD: decimal.NewFromInt(250_000_000),
	})
	if err != nil {
		t.Fatalf("create fund: %v", err)
	}
	if fund.ID == "" {
		t.Fatal("expected generated fund id")
	}
	if fund.Status != domain.FundStatusFundraising {
		t.Fatalf("expected default status Fundraising, got %s", fund.Status)
	}

	got, err := svc.GetByID(context.Background(), fund.ID)
	if err != nil {
		t.Fatalf("get fund: %v", err)
	}
	if got.Name != "Meridian Growth IV" || !got.TargetSizeUSD.Equal(decimal.NewFromInt(250_000_000)) {
		t.Fatalf("fund round-trip mismatch: %+v", got)
	}
}

func TestFundServiceCreateValidation(t *testing.T) {
	svc := newFundServiceForTest(t)
	cases := []struct {
		name string
		in   CreateFundInput
	}{
		{"blank name", CreateFundInput{Name: "  ", VintageYear: 2024, TargetSizeUSD: decimal.NewFromInt(1)}},
		{"vintage too early", CreateFundInput{Name: "F", VintageYear: 1850, TargetSizeUSD: decimal.NewFromInt(1)}},
		{"vintage too late", CreateFundInput{Name: "F", VintageYear: 2200, TargetSizeUSD: decimal.NewFromInt(1)}},
		{"zero target", CreateFundInput{Name: "F", VintageYear: 2024, TargetSizeUSD: decimal.Zero}},
		{"bad status", CreateFundInput{Name: "F", VintageYear: 2024, TargetSizeUSD: decimal.NewFromInt(1), Status: "Liquidated"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Create(context.Background(), tc.in); !apperror.IsKind(err, apperror.KindValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestFundServiceUpdateUnknownFund(t *testing.T) {
	svc := newFundServiceForTest(t)
	_, err := svc.Update(context.Background(), UpdateFundInput{
		ID:            "7d3c9f9e-0000-4000-8000-000000000000",
		Name:          "Missing",
		VintageYear:   2024,
		TargetSizeUSD: decimal.NewFromInt(1),
		Status:        domain.FundStatusInvesting,
	})
	if !apperror.IsKind(err, apperror.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestFundServiceUpdateStatusTransition(t *testing.T) {
	svc := newFundServiceForTest(t)
	fund, err := svc.Create(context.Background(), CreateFundInput{
		Name:          "Meridian Growth IV",
		VintageYear:   2025,
		TargetSizeUSD: decimal.NewFromInt(250_000_000),
	})
	if err != nil {
		t.Fatalf("create fund: %v", err)
	}

	updated, err := svc.Update(context.Background(), UpdateFundInput{
		ID:            fund.ID,
		Name:          fund.Name,
		VintageYear:   fund.VintageYear,
		TargetSizeUSD: fund.TargetSizeUSD,
		Status:        domain.FundStatusClosed,
	})
	if err != nil {
		t.Fatalf("update fund: %v", err)
	}
	if updated.Status != domain.FundStatusClosed {
		t.Fatalf("expected Closed, got %s", updated.Status)
	}
}

func TestFundServiceListFiltersByStatus(t *testing.T) {
	svc := newFundServiceForTest(t)
	ctx := context.Background()

	for _, seed := range []struct {
		name   string
		status domain.FundStatus
	}{
		{"Fund A", domain.FundStatusInvesting},
		{"Fund B", domain.FundStatusClosed},
		{"Fund C", domain.FundStatusInvesting},
	} {
		if _, err := svc.Create(ctx, CreateFundInput{
			Name:          seed.name,
			VintageYear:   2024,
			TargetSizeUSD: decimal.NewFromInt(10),
			Status:        seed.status,
		}); err != nil {
			t.Fatalf("create %s: %v", seed.name, err)
		}
	}

	page, err := svc.List(ctx, repository.FundListQuery{Status: domain.FundStatusInvesting})
	if err != nil {
		t.Fatalf("list funds: %v", err)
	}
	if page.Total != 2 {
		t.Fatalf("expected 2 investing funds, got %d", page.Total)
	}
	for _, f := range page.Items {
		if f.Status != domain.FundStatusInvesting {
			t.Fatalf("unexpected status in filtered page: %s", f.Status)
		}
	}

	all, err := svc.List(ctx, repository.FundListQuery{})
	if err != nil {
		t.Fatalf("list all funds: %v", err)
	}
	if all.Total != 3 {
		t.Fatalf("expected 3 funds total, got %d", all.Total)
	}
}
