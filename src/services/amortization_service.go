package services

import (
	"iter"
	"strconv"

	"github.com/livefire2015/ez-amortifier/src/models"
	"github.com/shopspring/decimal"
)

// AmortizationConfig holds configuration for schedule computation
type AmortizationConfig struct {
	Precision  int32 // Decimal places kept for payment, interest and balance
	MaxPeriods int   // Longest schedule the engine will produce
}

// DefaultAmortizationConfig returns standard amortization configuration
func DefaultAmortizationConfig() AmortizationConfig {
	return AmortizationConfig{
		Precision:  10,
		MaxPeriods: 1200, // 100 years of monthly payments
	}
}

// growthPrecision is the scale kept past the last digit of the rate while raising (1+r) to the n-th power
const growthPrecision = 28

// AmortizationEngine computes fixed payments and amortization schedules.
// It holds no mutable state and is safe for concurrent use.
type AmortizationEngine struct {
	config AmortizationConfig
}

// NewAmortizationEngine creates a new amortization engine.
// Zero config fields fall back to the defaults.
func NewAmortizationEngine(config AmortizationConfig) *AmortizationEngine {
	defaults := DefaultAmortizationConfig()
	if config.Precision <= 0 {
		config.Precision = defaults.Precision
	}
	if config.MaxPeriods <= 0 {
		config.MaxPeriods = defaults.MaxPeriods
	}
	return &AmortizationEngine{config: config}
}

// Config returns the effective configuration
func (e *AmortizationEngine) Config() AmortizationConfig {
	return e.config
}

// ComputePeriodicPayment calculates the fixed payment that retires principal over numberOfPeriods
// Formula: P × r(1+r)^n / ((1+r)^n − 1), or P / n when the rate is zero
// The result is rounded up to the configured precision so the nominal term is never exceeded.
func (e *AmortizationEngine) ComputePeriodicPayment(
	principal decimal.Decimal,
	periodicRate decimal.Decimal,
	numberOfPeriods int,
) (decimal.Decimal, error) {
	if err := e.validate(principal, periodicRate, numberOfPeriods, decimal.Zero); err != nil {
		return decimal.Zero, err
	}

	switch {
	case periodicRate.IsZero():
		if numberOfPeriods == 0 {
			return decimal.Zero, nil
		}
		return e.straightLinePayment(principal, numberOfPeriods), nil
	case principal.IsZero(), numberOfPeriods == 0:
		return decimal.Zero, nil
	}

	// growth never exceeds the exact (1+r)^n and stays above 1, so the payment never undershoots the annuity
	growth := compoundGrowth(periodicRate, numberOfPeriods)
	numerator := principal.Mul(periodicRate).Mul(growth)
	denominator := growth.Sub(decimal.NewFromInt(1))

	scale := e.config.Precision + 8
	payment := numerator.DivRound(denominator, scale)
	if payment.Mul(denominator).LessThan(numerator) {
		payment = payment.Add(decimal.New(1, -scale))
	}
	return payment.RoundCeil(e.config.Precision), nil
}

// straightLinePayment returns principal / n rounded up to the configured precision
func (e *AmortizationEngine) straightLinePayment(principal decimal.Decimal, numberOfPeriods int) decimal.Decimal {
	n := decimal.NewFromInt(int64(numberOfPeriods))
	payment := principal.DivRound(n, e.config.Precision)
	if payment.Mul(n).LessThan(principal) {
		payment = payment.Add(decimal.New(1, -e.config.Precision))
	}
	return payment
}

// compoundGrowth returns (1+r)^n by repeated squaring, truncated at every step.
// The scale grows with the digits of r so that 1+r is held exactly.
func compoundGrowth(periodicRate decimal.Decimal, numberOfPeriods int) decimal.Decimal {
	scale := int32(growthPrecision)
	if exp := periodicRate.Exponent(); exp < 0 {
		scale -= exp
	}

	result := decimal.NewFromInt(1)
	base := periodicRate.Add(decimal.NewFromInt(1))
	for n := numberOfPeriods; n > 0; n >>= 1 {
		if n&1 == 1 {
			result = result.Mul(base).RoundFloor(scale)
		}
		base = base.Mul(base).RoundFloor(scale)
	}
	return result
}

// Schedule validates the terms and returns the amortization schedule as a lazy sequence.
// Every range over the sequence recomputes the schedule from the first period.
func (e *AmortizationEngine) Schedule(terms models.LoanTerms) (iter.Seq[models.ScheduleEntry], error) {
	if err := e.validate(terms.Principal, terms.PeriodicRate, terms.NumberOfPeriods, terms.ExtraPayment); err != nil {
		return nil, err
	}

	payment, err := e.ComputePeriodicPayment(terms.Principal, terms.PeriodicRate, terms.NumberOfPeriods)
	if err != nil {
		return nil, err
	}

	if err := e.checkAmortizes(terms, payment); err != nil {
		return nil, err
	}

	return func(yield func(models.ScheduleEntry) bool) {
		balance := terms.Principal
		for period := 1; balance.IsPositive(); period++ {
			entry := e.nextEntry(balance, payment, terms.PeriodicRate, terms.ExtraPayment)
			entry.Period = period
			balance = entry.RemainingBalance
			if !yield(entry) {
				return
			}
		}
	}, nil
}

// GenerateSchedule returns the full amortization schedule
func (e *AmortizationEngine) GenerateSchedule(terms models.LoanTerms) ([]models.ScheduleEntry, error) {
	seq, err := e.Schedule(terms)
	if err != nil {
		return nil, err
	}

	entries := make([]models.ScheduleEntry, 0, terms.NumberOfPeriods)
	for entry := range seq {
		entries = append(entries, entry)
	}
	return entries, nil
}

// Summarize generates the schedule and totals it
func (e *AmortizationEngine) Summarize(terms models.LoanTerms) (models.ScheduleSummary, []models.ScheduleEntry, error) {
	entries, err := e.GenerateSchedule(terms)
	if err != nil {
		return models.ScheduleSummary{}, nil, err
	}

	payment, err := e.ComputePeriodicPayment(terms.Principal, terms.PeriodicRate, terms.NumberOfPeriods)
	if err != nil {
		return models.ScheduleSummary{}, nil, err
	}

	return models.SummarizeSchedule(terms, payment, entries), entries, nil
}

// Quote returns the per-period payment breakdown for the terms
func (e *AmortizationEngine) Quote(terms models.LoanTerms) (models.PaymentQuote, error) {
	if err := e.validate(terms.Principal, terms.PeriodicRate, terms.NumberOfPeriods, terms.ExtraPayment); err != nil {
		return models.PaymentQuote{}, err
	}

	payment, err := e.ComputePeriodicPayment(terms.Principal, terms.PeriodicRate, terms.NumberOfPeriods)
	if err != nil {
		return models.PaymentQuote{}, err
	}

	return models.PaymentQuote{
		MinimumPayment: payment,
		ExtraPayment:   terms.ExtraPayment,
		TotalPayment:   payment.Add(terms.ExtraPayment),
	}, nil
}

// nextEntry applies one period of interest and payment to balance.
// The extra payment is clamped for this period only.
func (e *AmortizationEngine) nextEntry(
	balance decimal.Decimal,
	payment decimal.Decimal,
	periodicRate decimal.Decimal,
	extraPayment decimal.Decimal,
) models.ScheduleEntry {
	interest := e.periodInterest(balance, periodicRate)
	principalPart := payment.Sub(interest)
	extra := extraPayment

	if balance.LessThan(principalPart.Add(extra)) {
		if balance.LessThan(principalPart) {
			principalPart = balance
			extra = decimal.Zero
		} else {
			extra = balance.Sub(principalPart)
		}
	} else if balance.LessThan(principalPart) {
		principalPart = balance
		extra = decimal.Zero
	}

	return models.ScheduleEntry{
		RemainingBalance:   balance.Sub(principalPart).Sub(extra),
		PrincipalPaid:      principalPart,
		InterestPaid:       interest,
		ExtraPrincipalPaid: extra,
	}
}

// periodInterest rounds down so rounding never adds periods to the schedule
func (e *AmortizationEngine) periodInterest(balance, periodicRate decimal.Decimal) decimal.Decimal {
	return balance.Mul(periodicRate).RoundFloor(e.config.Precision)
}

// checkAmortizes rejects terms whose payments can never bring the balance to zero
func (e *AmortizationEngine) checkAmortizes(terms models.LoanTerms, payment decimal.Decimal) error {
	if !terms.Principal.IsPositive() {
		return nil
	}

	first := e.nextEntry(terms.Principal, payment, terms.PeriodicRate, terms.ExtraPayment)
	if !first.TotalPrincipalPaid().IsPositive() {
		return &models.NonAmortizingLoanError{
			Principal:    terms.Principal,
			Payment:      payment,
			ExtraPayment: terms.ExtraPayment,
			Reason:       "payment does not reduce the balance",
		}
	}

	// A positive nominal term is retired within its own length; only an
	// extra-payment-only loan has an open-ended payoff.
	if terms.NumberOfPeriods > 0 {
		return nil
	}

	balance := terms.Principal
	for period := 1; balance.IsPositive(); period++ {
		if period > e.config.MaxPeriods {
			return &models.NonAmortizingLoanError{
				Principal:    terms.Principal,
				Payment:      payment,
				ExtraPayment: terms.ExtraPayment,
				Reason:       "payoff exceeds " + strconv.Itoa(e.config.MaxPeriods) + " periods",
			}
		}
		next := e.nextEntry(balance, payment, terms.PeriodicRate, terms.ExtraPayment)
		if !next.RemainingBalance.LessThan(balance) {
			return &models.NonAmortizingLoanError{
				Principal:    terms.Principal,
				Payment:      payment,
				ExtraPayment: terms.ExtraPayment,
				Reason:       "payment does not reduce the balance",
			}
		}
		balance = next.RemainingBalance
	}
	return nil
}

func (e *AmortizationEngine) validate(
	principal decimal.Decimal,
	periodicRate decimal.Decimal,
	numberOfPeriods int,
	extraPayment decimal.Decimal,
) error {
	if principal.IsNegative() {
		return &models.InvalidInputError{Field: "principal", Value: principal.String(), Reason: "must not be negative"}
	}
	if periodicRate.IsNegative() {
		return &models.InvalidInputError{Field: "periodic_rate", Value: periodicRate.String(), Reason: "must not be negative"}
	}
	if numberOfPeriods < 0 {
		return &models.InvalidInputError{Field: "number_of_periods", Value: strconv.Itoa(numberOfPeriods), Reason: "must not be negative"}
	}
	if numberOfPeriods > e.config.MaxPeriods {
		return &models.InvalidInputError{
			Field:  "number_of_periods",
			Value:  strconv.Itoa(numberOfPeriods),
			Reason: "must not exceed " + strconv.Itoa(e.config.MaxPeriods),
		}
	}
	if extraPayment.IsNegative() {
		return &models.InvalidInputError{Field: "extra_payment", Value: extraPayment.String(), Reason: "must not be negative"}
	}
	return nil
}
