package models

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// LoanTerms is the numeric input of the amortization engine
type LoanTerms struct {
	Principal       decimal.Decimal `json:"principal"`
	PeriodicRate    decimal.Decimal `json:"periodic_rate"` // Monthly rate as a fraction, 0.005 for 6% APR
	NumberOfPeriods int             `json:"number_of_periods"`
	ExtraPayment    decimal.Decimal `json:"extra_payment"`
}

// ScheduleEntry is one period of an amortization schedule
type ScheduleEntry struct {
	Period             int             `json:"period"`
	RemainingBalance   decimal.Decimal `json:"remaining_balance"`
	PrincipalPaid      decimal.Decimal `json:"principal_paid"`
	InterestPaid       decimal.Decimal `json:"interest_paid"`
	ExtraPrincipalPaid decimal.Decimal `json:"extra_principal_paid"`
}

// TotalPaid returns everything paid during the period
func (e ScheduleEntry) TotalPaid() decimal.Decimal {
	return e.PrincipalPaid.Add(e.InterestPaid).Add(e.ExtraPrincipalPaid)
}

// TotalPrincipalPaid returns the scheduled and extra principal together
func (e ScheduleEntry) TotalPrincipalPaid() decimal.Decimal {
	return e.PrincipalPaid.Add(e.ExtraPrincipalPaid)
}

// OpeningBalance recovers the balance that entered the period
func (e ScheduleEntry) OpeningBalance() decimal.Decimal {
	return e.RemainingBalance.Add(e.TotalPrincipalPaid())
}

// ScheduleSummary aggregates a full schedule
type ScheduleSummary struct {
	Principal           decimal.Decimal `json:"principal"`
	PeriodicPayment     decimal.Decimal `json:"periodic_payment"`
	ExtraPayment        decimal.Decimal `json:"extra_payment"`
	NominalPeriods      int             `json:"nominal_periods"`
	PayoffPeriods       int             `json:"payoff_periods"`
	TotalPaid           decimal.Decimal `json:"total_paid"`
	TotalInterest       decimal.Decimal `json:"total_interest"`
	TotalExtraPrincipal decimal.Decimal `json:"total_extra_principal"`
}

// PeriodsSaved returns how many periods the extra payment removes from the nominal term
func (s ScheduleSummary) PeriodsSaved() int {
	if s.PayoffPeriods >= s.NominalPeriods {
		return 0
	}
	return s.NominalPeriods - s.PayoffPeriods
}

// SummarizeSchedule totals the entries of a schedule
func SummarizeSchedule(terms LoanTerms, payment decimal.Decimal, entries []ScheduleEntry) ScheduleSummary {
	summary := ScheduleSummary{
		Principal:       terms.Principal,
		PeriodicPayment: payment,
		ExtraPayment:    terms.ExtraPayment,
		NominalPeriods:  terms.NumberOfPeriods,
		PayoffPeriods:   len(entries),
	}

	for _, entry := range entries {
		summary.TotalPaid = summary.TotalPaid.Add(entry.TotalPaid())
		summary.TotalInterest = summary.TotalInterest.Add(entry.InterestPaid)
		summary.TotalExtraPrincipal = summary.TotalExtraPrincipal.Add(entry.ExtraPrincipalPaid)
	}

	return summary
}

// PaymentQuote is the per-period payment breakdown shown while a loan is edited
type PaymentQuote struct {
	MinimumPayment decimal.Decimal `json:"minimum_payment"`
	ExtraPayment   decimal.Decimal `json:"extra_payment"`
	TotalPayment   decimal.Decimal `json:"total_payment"`
}

// Engine error kinds
var (
	ErrInvalidInput      = errors.New("invalid loan input")
	ErrNonAmortizingLoan = errors.New("loan does not amortize")
)

// InvalidInputError reports a negative or out-of-range engine input
type InvalidInputError struct {
	Field  string
	Value  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// Is lets errors.Is match ErrInvalidInput
func (e *InvalidInputError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NonAmortizingLoanError reports terms whose payments can never retire the balance
type NonAmortizingLoanError struct {
	Principal    decimal.Decimal
	Payment      decimal.Decimal
	ExtraPayment decimal.Decimal
	Reason       string
}

func (e *NonAmortizingLoanError) Error() string {
	return fmt.Sprintf("loan of %s does not amortize with payment %s and extra %s: %s",
		e.Principal, e.Payment, e.ExtraPayment, e.Reason)
}

// Is lets errors.Is match ErrNonAmortizingLoan
func (e *NonAmortizingLoanError) Is(target error) bool {
	return target == ErrNonAmortizingLoan
}
