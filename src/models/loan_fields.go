package models

import (
	"errors"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// MoneyDecimalDigits is the number of fraction digits accepted for amounts
	MoneyDecimalDigits = 2
	// RateDecimalDigits is the number of fraction digits accepted for rates
	RateDecimalDigits = 3
)

// Parsing errors
var (
	ErrInvalidMoney = errors.New("amount must be a non-negative number with at most 2 decimals")
	ErrInvalidRate  = errors.New("rate must be a non-negative number with at most 3 decimals")
	ErrInvalidTerm  = errors.New("term must be a non-negative whole number")
)

// LoanFields holds loan input exactly as typed or stored as text
type LoanFields struct {
	Title        string `json:"title"`
	Principal    string `json:"principal"`
	Rate         string `json:"rate"` // Annual percentage
	Term         string `json:"term"`
	TermUnit     string `json:"term_unit"`
	ExtraPayment string `json:"extra_payment"`
}

// ParsedLoanFields is LoanFields after numeric parsing
type ParsedLoanFields struct {
	Principal         decimal.Decimal
	AnnualRatePercent decimal.Decimal
	Term              int
	TermUnit          TermUnit
	ExtraPayment      decimal.Decimal
}

// FieldError ties a parsing failure to the field it came from
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Err.Error()
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// ParseLoanFields converts text input into typed values.
// Blank principal, rate and extra payment read as zero and a blank term reads as one period,
// so a half-filled form still yields a quote.
func ParseLoanFields(f LoanFields) (ParsedLoanFields, error) {
	var parsed ParsedLoanFields
	var err error

	if parsed.Principal, err = ParseMoney(f.Principal); err != nil {
		return ParsedLoanFields{}, &FieldError{Field: "principal", Err: err}
	}
	if parsed.AnnualRatePercent, err = ParseRate(f.Rate); err != nil {
		return ParsedLoanFields{}, &FieldError{Field: "rate", Err: err}
	}
	if parsed.Term, err = ParseTerm(f.Term); err != nil {
		return ParsedLoanFields{}, &FieldError{Field: "term", Err: err}
	}
	if parsed.TermUnit, err = ParseTermUnit(f.TermUnit); err != nil {
		return ParsedLoanFields{}, &FieldError{Field: "term_unit", Err: err}
	}
	if parsed.ExtraPayment, err = ParseMoney(f.ExtraPayment); err != nil {
		return ParsedLoanFields{}, &FieldError{Field: "extra_payment", Err: err}
	}

	if parsed.AnnualRatePercent.GreaterThan(decimal.NewFromInt(100)) {
		return ParsedLoanFields{}, &FieldError{Field: "rate", Err: ErrInvalidAnnualRate}
	}
	if parsed.TermUnit == TermUnitYears && parsed.Term > MaxTermYears {
		return ParsedLoanFields{}, &FieldError{Field: "term", Err: ErrInvalidLoanTerm}
	}

	return parsed, nil
}

// ParseMoney parses an amount with at most two fraction digits
func ParseMoney(s string) (decimal.Decimal, error) {
	d, err := parseLimitedDecimal(s, MoneyDecimalDigits)
	if err != nil {
		return decimal.Zero, ErrInvalidMoney
	}
	return d, nil
}

// ParseRate parses an annual percentage with at most three fraction digits
func ParseRate(s string) (decimal.Decimal, error) {
	d, err := parseLimitedDecimal(s, RateDecimalDigits)
	if err != nil {
		return decimal.Zero, ErrInvalidRate
	}
	return d, nil
}

// ParseTerm parses a whole number of periods; blank means 1
func ParseTerm(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 1, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, ErrInvalidTerm
	}
	return n, nil
}

// ParseTermUnit parses a term unit; blank means months
func ParseTermUnit(s string) (TermUnit, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return TermUnitMonths, nil
	}
	unit := TermUnit(s)
	if !unit.IsValid() {
		return "", ErrInvalidTermUnit
	}
	return unit, nil
}

func parseLimitedDecimal(s string, maxFraction int) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	// Accept a decimal comma like the locale-aware input filters did
	s = strings.Replace(s, ",", ".", 1)

	intPart, fracPart, _ := strings.Cut(s, ".")
	if intPart == "" && fracPart == "" {
		return decimal.Zero, ErrInvalidMoney
	}
	if len(fracPart) > maxFraction {
		return decimal.Zero, ErrInvalidMoney
	}
	for _, part := range []string{intPart, fracPart} {
		for _, r := range part {
			if r < '0' || r > '9' {
				return decimal.Zero, ErrInvalidMoney
			}
		}
	}

	if intPart == "" {
		intPart = "0"
	}
	if fracPart == "" {
		return decimal.NewFromString(intPart)
	}
	return decimal.NewFromString(intPart + "." + fracPart)
}
