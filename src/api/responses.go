package api

import (
	"time"

	"github.com/livefire2015/ez-amortifier/src/models"
	"github.com/livefire2015/ez-amortifier/src/services"
	"github.com/shopspring/decimal"
)

// Amounts leave the API as strings with two decimals
const displayDecimals = 2

func money(d decimal.Decimal) string {
	return d.StringFixed(displayDecimals)
}

// LoanResponse is the display form of a stored loan
type LoanResponse struct {
	ID                string    `json:"id"`
	Title             string    `json:"title"`
	Principal         string    `json:"principal"`
	AnnualRatePercent string    `json:"annual_rate_percent"`
	Term              int       `json:"term"`
	TermUnit          string    `json:"term_unit"`
	ExtraPayment      string    `json:"extra_payment"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func newLoanResponse(loan *models.Loan) LoanResponse {
	return LoanResponse{
		ID:                loan.ID.String(),
		Title:             loan.Title,
		Principal:         money(loan.Principal),
		AnnualRatePercent: loan.AnnualRatePercent.String(),
		Term:              loan.Term,
		TermUnit:          string(loan.TermUnit),
		ExtraPayment:      money(loan.ExtraPayment),
		CreatedAt:         loan.CreatedAt,
		UpdatedAt:         loan.UpdatedAt,
	}
}

// EntryResponse is the display form of one schedule period
type EntryResponse struct {
	Period             int    `json:"period"`
	RemainingBalance   string `json:"remaining_balance"`
	PrincipalPaid      string `json:"principal_paid"`
	InterestPaid       string `json:"interest_paid"`
	ExtraPrincipalPaid string `json:"extra_principal_paid"`
	TotalPaid          string `json:"total_paid"`
}

func newEntryResponse(entry models.ScheduleEntry) EntryResponse {
	return EntryResponse{
		Period:             entry.Period,
		RemainingBalance:   money(entry.RemainingBalance),
		PrincipalPaid:      money(entry.PrincipalPaid),
		InterestPaid:       money(entry.InterestPaid),
		ExtraPrincipalPaid: money(entry.ExtraPrincipalPaid),
		TotalPaid:          money(entry.TotalPaid()),
	}
}

// SummaryResponse is the display form of a schedule summary
type SummaryResponse struct {
	Principal           string `json:"principal"`
	PeriodicPayment     string `json:"periodic_payment"`
	ExtraPayment        string `json:"extra_payment"`
	NominalPeriods      int    `json:"nominal_periods"`
	PayoffPeriods       int    `json:"payoff_periods"`
	PeriodsSaved        int    `json:"periods_saved"`
	TotalPaid           string `json:"total_paid"`
	TotalInterest       string `json:"total_interest"`
	TotalExtraPrincipal string `json:"total_extra_principal"`
}

func newSummaryResponse(s models.ScheduleSummary) SummaryResponse {
	return SummaryResponse{
		Principal:           money(s.Principal),
		PeriodicPayment:     money(s.PeriodicPayment),
		ExtraPayment:        money(s.ExtraPayment),
		NominalPeriods:      s.NominalPeriods,
		PayoffPeriods:       s.PayoffPeriods,
		PeriodsSaved:        s.PeriodsSaved(),
		TotalPaid:           money(s.TotalPaid),
		TotalInterest:       money(s.TotalInterest),
		TotalExtraPrincipal: money(s.TotalExtraPrincipal),
	}
}

// ScheduleResponse carries a loan with its full schedule.
// Entries are built per response and never shared between requests.
type ScheduleResponse struct {
	Loan    LoanResponse    `json:"loan"`
	Summary SummaryResponse `json:"summary"`
	Entries []EntryResponse `json:"entries"`
}

// QuoteResponse is the live payment preview
type QuoteResponse struct {
	MinimumPayment string `json:"minimum_payment"`
	ExtraPayment   string `json:"extra_payment"`
	TotalPayment   string `json:"total_payment"`
}

func newQuoteResponse(q models.PaymentQuote) QuoteResponse {
	return QuoteResponse{
		MinimumPayment: money(q.MinimumPayment),
		ExtraPayment:   money(q.ExtraPayment),
		TotalPayment:   money(q.TotalPayment),
	}
}

// PortfolioLoanResponse is one loan within the portfolio view
type PortfolioLoanResponse struct {
	LoanID  string          `json:"loan_id"`
	Title   string          `json:"title"`
	Status  string          `json:"status"`
	Summary SummaryResponse `json:"summary"`
}

// PortfolioResponse is the display form of the portfolio summary
type PortfolioResponse struct {
	Loans               []PortfolioLoanResponse `json:"loans"`
	TotalPrincipal      string                  `json:"total_principal"`
	TotalPeriodicOutlay string                  `json:"total_periodic_outlay"`
	TotalInterest       string                  `json:"total_interest"`
	TotalPaid           string                  `json:"total_paid"`
	DebtFreeAfter       int                     `json:"debt_free_after"`
	NonAmortizingCount  int                     `json:"non_amortizing_count"`
}

func newPortfolioResponse(p *services.PortfolioSummary) PortfolioResponse {
	loans := make([]PortfolioLoanResponse, 0, len(p.Loans))
	for _, loan := range p.Loans {
		loans = append(loans, PortfolioLoanResponse{
			LoanID:  loan.LoanID.String(),
			Title:   loan.Title,
			Status:  string(loan.Status),
			Summary: newSummaryResponse(loan.Summary),
		})
	}

	return PortfolioResponse{
		Loans:               loans,
		TotalPrincipal:      money(p.TotalPrincipal),
		TotalPeriodicOutlay: money(p.TotalPeriodicOutlay),
		TotalInterest:       money(p.TotalInterest),
		TotalPaid:           money(p.TotalPaid),
		DebtFreeAfter:       p.DebtFreeAfter,
		NonAmortizingCount:  p.NonAmortizingCount,
	}
}
