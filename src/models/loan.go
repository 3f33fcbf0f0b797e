package models

import (
	"errors"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentsPerYear is the number of payment periods in a year (monthly payments)
const PaymentsPerYear = 12

// MaxTermYears is the longest term in years whose period count fits in an int
const MaxTermYears = math.MaxInt / PaymentsPerYear

// TermUnit represents the unit the loan term is expressed in
type TermUnit string

const (
	TermUnitMonths TermUnit = "months"
	TermUnitYears  TermUnit = "years"
)

// IsValid reports whether the unit is a known term unit
func (u TermUnit) IsValid() bool {
	switch u {
	case TermUnitMonths, TermUnitYears:
		return true
	}
	return false
}

// Loan represents a stored loan record
// Rate is kept as the annual percentage the user entered; see Terms for engine input
type Loan struct {
	ID    uuid.UUID `json:"id" db:"id"`
	Title string    `json:"title" db:"title"`

	Principal         decimal.Decimal `json:"principal" db:"principal"`
	AnnualRatePercent decimal.Decimal `json:"annual_rate_percent" db:"annual_rate_percent"` // 6.5 means 6.5%
	Term              int             `json:"term" db:"term"`
	TermUnit          TermUnit        `json:"term_unit" db:"term_unit"`
	ExtraPayment      decimal.Decimal `json:"extra_payment" db:"extra_payment"` // Added to principal every period

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Validation errors
var (
	ErrLoanNotFound        = errors.New("loan not found")
	ErrBlankTitle          = errors.New("loan title must not be blank")
	ErrInvalidPrincipal    = errors.New("principal must not be negative")
	ErrInvalidAnnualRate   = errors.New("annual rate must be between 0 and 100")
	ErrInvalidLoanTerm     = errors.New("term must not be negative or overflow the period count")
	ErrInvalidExtraPayment = errors.New("extra payment must not be negative")
	ErrInvalidTermUnit     = errors.New("term unit must be months or years")
	ErrPeriodOutOfRange    = errors.New("period is outside the schedule")
)

// IsValidationError reports whether err comes from rejected loan input
func IsValidationError(err error) bool {
	var fieldErr *FieldError
	if errors.As(err, &fieldErr) {
		return true
	}
	for _, target := range []error{
		ErrInvalidInput,
		ErrBlankTitle,
		ErrInvalidPrincipal,
		ErrInvalidAnnualRate,
		ErrInvalidLoanTerm,
		ErrInvalidExtraPayment,
		ErrInvalidTermUnit,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// Validate validates the loan record
func (l *Loan) Validate() error {
	if strings.TrimSpace(l.Title) == "" {
		return ErrBlankTitle
	}

	if l.Principal.IsNegative() {
		return ErrInvalidPrincipal
	}

	hundred := decimal.NewFromInt(100)
	if l.AnnualRatePercent.IsNegative() || l.AnnualRatePercent.GreaterThan(hundred) {
		return ErrInvalidAnnualRate
	}

	if l.Term < 0 || (l.TermUnit == TermUnitYears && l.Term > MaxTermYears) {
		return ErrInvalidLoanTerm
	}

	if !l.TermUnit.IsValid() {
		return ErrInvalidTermUnit
	}

	if l.ExtraPayment.IsNegative() {
		return ErrInvalidExtraPayment
	}

	return nil
}

// NumberOfPeriods returns the nominal number of monthly payments
func (l *Loan) NumberOfPeriods() int {
	if l.TermUnit == TermUnitYears {
		return l.Term * PaymentsPerYear
	}
	return l.Term
}

// PeriodicRate converts the annual percentage into a monthly fraction
// Formula: APR / 100 / 12
func (l *Loan) PeriodicRate() decimal.Decimal {
	return PeriodicRateFromAnnualPercent(l.AnnualRatePercent)
}

// Terms builds the engine input for this loan
func (l *Loan) Terms() LoanTerms {
	return LoanTerms{
		Principal:       l.Principal,
		PeriodicRate:    l.PeriodicRate(),
		NumberOfPeriods: l.NumberOfPeriods(),
		ExtraPayment:    l.ExtraPayment,
	}
}

// ApplyFields copies the financial fields of parsed input onto the loan.
// The title and identity are left untouched; renaming is a separate operation.
func (l *Loan) ApplyFields(f ParsedLoanFields) {
	l.Principal = f.Principal
	l.AnnualRatePercent = f.AnnualRatePercent
	l.Term = f.Term
	l.TermUnit = f.TermUnit
	l.ExtraPayment = f.ExtraPayment
}

// PeriodicRateFromAnnualPercent converts an annual percentage rate into the monthly fraction
func PeriodicRateFromAnnualPercent(annualPercent decimal.Decimal) decimal.Decimal {
	return annualPercent.Div(decimal.NewFromInt(100)).Div(decimal.NewFromInt(PaymentsPerYear))
}

// NewLoan creates a loan with defaults applied
func NewLoan(title string, f ParsedLoanFields) Loan {
	now := time.Now()
	loan := Loan{
		ID:        uuid.New(),
		Title:     strings.TrimSpace(title),
		CreatedAt: now,
		UpdatedAt: now,
	}
	loan.ApplyFields(f)
	if loan.TermUnit == "" {
		loan.TermUnit = TermUnitMonths
	}
	return loan
}
