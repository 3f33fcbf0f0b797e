package models

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func validLoan() Loan {
	return NewLoan("Car", ParsedLoanFields{
		Principal:         decimal.NewFromInt(12000),
		AnnualRatePercent: decimal.RequireFromString("4.5"),
		Term:              4,
		TermUnit:          TermUnitYears,
	})
}

func TestLoanValidation(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Loan)
		wantErr error
	}{
		{
			name:    "Valid loan",
			modify:  func(l *Loan) {},
			wantErr: nil,
		},
		{
			name:    "Blank title",
			modify:  func(l *Loan) { l.Title = "   " },
			wantErr: ErrBlankTitle,
		},
		{
			name:    "Negative principal",
			modify:  func(l *Loan) { l.Principal = decimal.NewFromInt(-1) },
			wantErr: ErrInvalidPrincipal,
		},
		{
			name:    "Rate above 100",
			modify:  func(l *Loan) { l.AnnualRatePercent = decimal.RequireFromString("100.001") },
			wantErr: ErrInvalidAnnualRate,
		},
		{
			name:    "Negative term",
			modify:  func(l *Loan) { l.Term = -1 },
			wantErr: ErrInvalidLoanTerm,
		},
		{
			name:    "Unknown unit",
			modify:  func(l *Loan) { l.TermUnit = "weeks" },
			wantErr: ErrInvalidTermUnit,
		},
		{
			name:    "Negative extra payment",
			modify:  func(l *Loan) { l.ExtraPayment = decimal.NewFromInt(-5) },
			wantErr: ErrInvalidExtraPayment,
		},
		{
			name:    "Years term overflowing the period count",
			modify:  func(l *Loan) { l.Term = MaxTermYears + 1 },
			wantErr: ErrInvalidLoanTerm,
		},
		{
			name: "Same term in months is left to the engine",
			modify: func(l *Loan) {
				l.Term = MaxTermYears + 1
				l.TermUnit = TermUnitMonths
			},
			wantErr: nil,
		},
		{
			name:    "Zero term is allowed",
			modify:  func(l *Loan) { l.Term = 0 },
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loan := validLoan()
			tt.modify(&loan)
			err := loan.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoanTerms(t *testing.T) {
	loan := validLoan()
	terms := loan.Terms()

	if terms.NumberOfPeriods != 48 {
		t.Errorf("Expected 48 periods, got %d", terms.NumberOfPeriods)
	}
	// 4.5 / 100 / 12
	if !terms.PeriodicRate.Equal(decimal.RequireFromString("0.00375")) {
		t.Errorf("Expected periodic rate 0.00375, got %s", terms.PeriodicRate)
	}
	if !terms.Principal.Equal(decimal.NewFromInt(12000)) {
		t.Errorf("Expected principal 12000, got %s", terms.Principal)
	}

	loan.TermUnit = TermUnitMonths
	if loan.NumberOfPeriods() != 4 {
		t.Errorf("Expected 4 periods in months, got %d", loan.NumberOfPeriods())
	}
}

func TestPeriodicRateFromAnnualPercent(t *testing.T) {
	tests := []struct {
		apr      string
		expected string
	}{
		{"0", "0"},
		{"6", "0.005"},
		{"12", "0.01"},
		{"18.6", "0.0155"},
	}

	for _, tt := range tests {
		result := PeriodicRateFromAnnualPercent(decimal.RequireFromString(tt.apr))
		if !result.Equal(decimal.RequireFromString(tt.expected)) {
			t.Errorf("PeriodicRateFromAnnualPercent(%s) = %s, want %s", tt.apr, result, tt.expected)
		}
	}
}

func TestNewLoanDefaults(t *testing.T) {
	loan := NewLoan("  Boat  ", ParsedLoanFields{Term: 12})

	if loan.Title != "Boat" {
		t.Errorf("Expected trimmed title, got %q", loan.Title)
	}
	if loan.TermUnit != TermUnitMonths {
		t.Errorf("Expected months by default, got %s", loan.TermUnit)
	}
	if loan.CreatedAt.IsZero() || !loan.CreatedAt.Equal(loan.UpdatedAt) {
		t.Errorf("Expected matching creation timestamps, got %v and %v", loan.CreatedAt, loan.UpdatedAt)
	}
	if err := loan.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestScheduleSummary(t *testing.T) {
	terms := LoanTerms{
		Principal:       decimal.NewFromInt(300),
		NumberOfPeriods: 4,
		ExtraPayment:    decimal.NewFromInt(50),
	}
	entries := []ScheduleEntry{
		{Period: 1, RemainingBalance: decimal.NewFromInt(175), PrincipalPaid: decimal.NewFromInt(75), InterestPaid: decimal.NewFromInt(3), ExtraPrincipalPaid: decimal.NewFromInt(50)},
		{Period: 2, RemainingBalance: decimal.NewFromInt(50), PrincipalPaid: decimal.NewFromInt(75), InterestPaid: decimal.NewFromInt(2), ExtraPrincipalPaid: decimal.NewFromInt(50)},
		{Period: 3, RemainingBalance: decimal.Zero, PrincipalPaid: decimal.NewFromInt(50), InterestPaid: decimal.NewFromInt(1), ExtraPrincipalPaid: decimal.Zero},
	}

	summary := SummarizeSchedule(terms, decimal.NewFromInt(78), entries)

	if summary.PayoffPeriods != 3 || summary.PeriodsSaved() != 1 {
		t.Errorf("Expected payoff in 3 periods saving 1, got %d saving %d", summary.PayoffPeriods, summary.PeriodsSaved())
	}
	if !summary.TotalInterest.Equal(decimal.NewFromInt(6)) {
		t.Errorf("Expected total interest 6, got %s", summary.TotalInterest)
	}
	if !summary.TotalExtraPrincipal.Equal(decimal.NewFromInt(100)) {
		t.Errorf("Expected extra principal 100, got %s", summary.TotalExtraPrincipal)
	}
	if !summary.TotalPaid.Equal(decimal.NewFromInt(306)) {
		t.Errorf("Expected total paid 306, got %s", summary.TotalPaid)
	}
	if !entries[1].OpeningBalance().Equal(decimal.NewFromInt(175)) {
		t.Errorf("Expected opening balance 175, got %s", entries[1].OpeningBalance())
	}
}

func TestEngineErrorsMatchSentinels(t *testing.T) {
	var err error = &InvalidInputError{Field: "principal", Value: "-1", Reason: "must not be negative"}
	if !errors.Is(err, ErrInvalidInput) || errors.Is(err, ErrNonAmortizingLoan) {
		t.Errorf("InvalidInputError matched the wrong sentinel: %v", err)
	}
	if !IsValidationError(err) {
		t.Error("Expected InvalidInputError to be a validation error")
	}

	err = &NonAmortizingLoanError{Principal: decimal.NewFromInt(5000), Reason: "payment does not reduce the balance"}
	if !errors.Is(err, ErrNonAmortizingLoan) || errors.Is(err, ErrInvalidInput) {
		t.Errorf("NonAmortizingLoanError matched the wrong sentinel: %v", err)
	}
	if IsValidationError(err) {
		t.Error("Expected NonAmortizingLoanError not to be a validation error")
	}
}
