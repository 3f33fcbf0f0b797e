package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/livefire2015/ez-amortifier/src/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// LoanStatus describes whether a stored loan could be scheduled
type LoanStatus string

const (
	LoanStatusAmortizing    LoanStatus = "amortizing"
	LoanStatusPaidOff       LoanStatus = "paid_off"
	LoanStatusNonAmortizing LoanStatus = "non_amortizing"
)

// PortfolioLoan is one loan's contribution to the portfolio
type PortfolioLoan struct {
	LoanID  uuid.UUID              `json:"loan_id"`
	Title   string                 `json:"title"`
	Status  LoanStatus             `json:"status"`
	Summary models.ScheduleSummary `json:"summary"`
}

// PortfolioSummary aggregates the schedules of every stored loan
type PortfolioSummary struct {
	Loans               []PortfolioLoan `json:"loans"`
	TotalPrincipal      decimal.Decimal `json:"total_principal"`
	TotalPeriodicOutlay decimal.Decimal `json:"total_periodic_outlay"` // Payment plus extra across loans
	TotalInterest       decimal.Decimal `json:"total_interest"`
	TotalPaid           decimal.Decimal `json:"total_paid"`
	DebtFreeAfter       int             `json:"debt_free_after"` // Periods until the last loan is paid off
	NonAmortizingCount  int             `json:"non_amortizing_count"`
}

// PortfolioService computes schedules for all loans concurrently
type PortfolioService struct {
	loans   *LoanService
	workers int
	logger  *zap.Logger
}

// NewPortfolioService creates a new portfolio service
func NewPortfolioService(loans *LoanService, workers int, logger *zap.Logger) *PortfolioService {
	if workers <= 0 {
		workers = 4
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PortfolioService{loans: loans, workers: workers, logger: logger}
}

// Summarize schedules every stored loan and totals the results.
// Loans that cannot amortize are reported, not failed.
func (s *PortfolioService) Summarize(ctx context.Context) (*PortfolioSummary, error) {
	loans, err := s.loans.ListLoans(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]PortfolioLoan, len(loans))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i := range loans {
		loan := loans[i]
		g.Go(func() error {
			result := PortfolioLoan{LoanID: loan.ID, Title: loan.Title}

			schedule, err := s.loans.Schedule(gctx, loan.Terms())
			switch {
			case errors.Is(err, models.ErrNonAmortizingLoan):
				result.Status = LoanStatusNonAmortizing
				s.logger.Debug("loan does not amortize", zap.String("loan_id", loan.ID.String()), zap.Error(err))
			case err != nil:
				return fmt.Errorf("schedule loan %s: %w", loan.ID, err)
			default:
				result.Summary = schedule.Summary
				result.Status = LoanStatusAmortizing
				if schedule.Summary.PayoffPeriods == 0 {
					result.Status = LoanStatusPaidOff
				}
			}

			results[i] = result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary := &PortfolioSummary{Loans: results}
	for _, result := range results {
		if result.Status == LoanStatusNonAmortizing {
			summary.NonAmortizingCount++
			continue
		}
		summary.TotalPrincipal = summary.TotalPrincipal.Add(result.Summary.Principal)
		summary.TotalInterest = summary.TotalInterest.Add(result.Summary.TotalInterest)
		summary.TotalPaid = summary.TotalPaid.Add(result.Summary.TotalPaid)
		if result.Status == LoanStatusAmortizing {
			outlay := result.Summary.PeriodicPayment.Add(result.Summary.ExtraPayment)
			summary.TotalPeriodicOutlay = summary.TotalPeriodicOutlay.Add(outlay)
		}
		if result.Summary.PayoffPeriods > summary.DebtFreeAfter {
			summary.DebtFreeAfter = result.Summary.PayoffPeriods
		}
	}

	s.logger.Info("portfolio summarized",
		zap.Int("loans", len(results)),
		zap.Int("non_amortizing", summary.NonAmortizingCount),
		zap.String("total_interest", summary.TotalInterest.String()))

	return summary, nil
}
