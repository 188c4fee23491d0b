package service

import (
	"context"
	"testing"

	"go-fund-registry-service/internal/apperror"
	"go-fund-registry-service/internal/domain"
	"go-fund-registry-service/internal/repository"
)

func newInvestorServiceForTest(t *testing.T) InvestorService {
	t.Helper()
	db := newServiceDBForTest(t)
	return NewInvestorService(repository.NewInvestorRepository(db), discardLogger())
}

func TestInvestorServiceCreateNormalizesEmail(t *testing.T) {
	svc := newInvestorServiceForTest(t)

	investor, err := svc.Create(context.Background(), CreateInvestorInput{
		Name:         "Acme Pension",
		InvestorType: "Institution",
		Email:        "  LP@Example.COM ",
	})
	if err != nil {
		t.Fatalf("create investor: %v", err)
	}
	if investor.Email != "lp@example.com" {
		t.Fatalf("expected lowercased trimmed email, got %q", investor.Email)
	}
	if investor.InvestorType != domain.InvestorTypeInstitution {
		t.Fatalf("unexpected investor type: %s", investor.InvestorType)
	}
}

func TestInvestorServiceCreateAcceptsFamilyOfficeSpelling(t *testing.T) {
	svc := newInvestorServiceForTest(t)

	for i, spelling := range []string{"Family Office", "FamilyOffice"} {
		investor, err := svc.Create(context.Background(), CreateInvestorInput{
			Name:         "Harper Family",
			InvestorType: spelling,
			Email:        []string{"a@example.com", "b@example.com"}[i],
		})
		if err != nil {
			t.Fatalf("create with spelling %q: %v", spelling, err)
		}
		if investor.InvestorType != domain.InvestorTypeFamilyOffice {
			t.Fatalf("spelling %q parsed to %s", spelling, investor.InvestorType)
		}
	}
}

func TestInvestorServiceCreateValidation(t *testing.T) {
	svc := newInvestorServiceForTest(t)
	cases := []struct {
		name string
		in   CreateInvestorInput
	}{
		{"blank name", CreateInvestorInput{Name: " ", InvestorType: "Institution", Email: "a@example.com"}},
		{"bad type", CreateInvestorInput{Name: "A", InvestorType: "Hedge Fund", Email: "a@example.com"}},
		{"bad email", CreateInvestorInput{Name: "A", InvestorType: "Institution", Email: "not-an-email"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Create(context.Background(), tc.in); !apperror.IsKind(err, apperror.KindValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestInvestorServiceCreateDuplicateEmailConflicts(t *testing.T) {
	svc := newInvestorServiceForTest(t)
	in := CreateInvestorInput{Name: "Acme Pension", InvestorType: "Institution", Email: "lp@example.com"}

	if _, err := svc.Create(context.Background(), in); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := svc.Create(context.Background(), in)
	if !apperror.IsKind(err, apperror.KindConflict) {
		t.Fatalf("expected conflict on duplicate email, got %v", err)
	}
}

func TestInvestorServiceListPaged(t *testing.T) {
	svc := newInvestorServiceForTest(t)
	ctx := context.Background()

	emails := []string{"a@example.com", "b@example.com", "c@example.com"}
	for _, email := range emails {
		if _, err := svc.Create(ctx, CreateInvestorInput{Name: "LP", InvestorType: "Individual", Email: email}); err != nil {
			t.Fatalf("create %s: %v", email, err)
		}
	}

	page, err := svc.List(ctx, repository.PageRequest{Page: 1, PageSize: 2})
	if err != nil {
		t.Fatalf("list investors: %v", err)
	}
	if page.Total != 3 || len(page.Items) != 2 || page.TotalPages != 2 {
		t.Fatalf("unexpected page: total=%d items=%d pages=%d", page.Total, len(page.Items), page.TotalPages)
	}
}
