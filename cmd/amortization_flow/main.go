package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/livefire2015/ez-amortifier/src/cache"
	"github.com/livefire2015/ez-amortifier/src/models"
	"github.com/livefire2015/ez-amortifier/src/repository"
	"github.com/livefire2015/ez-amortifier/src/services"
)

func main() {
	dir, err := os.MkdirTemp("", "amortization-flow")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(dir)

	ctx := context.Background()

	repo, err := repository.NewSQLiteLoanRepository(ctx, filepath.Join(dir, "loans.db"), nil)
	if err != nil {
		log.Fatal(err)
	}
	defer repo.Close()

	engine := services.NewAmortizationEngine(services.DefaultAmortizationConfig())
	loanService := services.NewLoanService(repo, engine, cache.NewLRUScheduleCache(64, 0), nil, nil)
	portfolioService := services.NewPortfolioService(loanService, 4, nil)

	fmt.Println("=== EZ Amortifier - Loan Amortization Flow Example ===")
	fmt.Println()

	// --- Step 1: Live quote while typing ---
	fmt.Println("--- Step 1: Quote ---")
	quote, err := loanService.Quote(ctx, models.LoanFields{
		Principal: "200000",
		Rate:      "6",
		Term:      "30",
		TermUnit:  "years",
	})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Monthly payment for $200,000 at 6%% over 30 years: $%s (Expected: 1199.10)\n\n", quote.MinimumPayment.StringFixed(2))

	// --- Step 2: Save the mortgage and show its schedule ---
	fmt.Println("--- Step 2: Mortgage Schedule ---")
	mortgage, err := loanService.CreateLoan(ctx, models.LoanFields{
		Title:     "House",
		Principal: "200000",
		Rate:      "6",
		Term:      "30",
		TermUnit:  "years",
	})
	if err != nil {
		log.Fatal(err)
	}
	printSchedule(ctx, loanService, mortgage.ID)

	// --- Step 3: Add an extra payment ---
	fmt.Println("--- Step 3: Extra Payment ---")
	if _, err := loanService.UpdateLoan(ctx, mortgage.ID, models.LoanFields{
		Principal:    "200000",
		Rate:         "6",
		Term:         "30",
		TermUnit:     "years",
		ExtraPayment: "250",
	}); err != nil {
		log.Fatal(err)
	}
	printSchedule(ctx, loanService, mortgage.ID)

	// --- Step 4: Rename ---
	fmt.Println("--- Step 4: Rename ---")
	renamed, err := loanService.RenameLoan(ctx, mortgage.ID, "Family home")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Loan renamed to %q\n\n", renamed.Title)

	// --- Step 5: Loans that cannot be scheduled ---
	fmt.Println("--- Step 5: Non-Amortizing Loan ---")
	stuck, err := loanService.CreateLoan(ctx, models.LoanFields{Title: "IOU", Principal: "5000", Term: "0"})
	if err != nil {
		log.Fatal(err)
	}
	if _, _, err := loanService.LoanSchedule(ctx, stuck.ID); errors.Is(err, models.ErrNonAmortizingLoan) {
		fmt.Printf("Schedule rejected: %v\n\n", err)
	} else {
		fmt.Printf("Unexpected result: %v\n\n", err)
	}

	// --- Step 6: Portfolio ---
	fmt.Println("--- Step 6: Portfolio ---")
	if _, err := loanService.CreateLoan(ctx, models.LoanFields{Title: "Car", Principal: "18000", Rate: "4.9", Term: "60"}); err != nil {
		log.Fatal(err)
	}
	portfolio, err := portfolioService.Summarize(ctx)
	if err != nil {
		log.Fatal(err)
	}
	for _, loan := range portfolio.Loans {
		fmt.Printf("%-12s %-15s payoff in %d periods\n", loan.Title, loan.Status, loan.Summary.PayoffPeriods)
	}
	fmt.Printf("Monthly outlay: $%s, total interest: $%s, debt free after %d periods\n\n",
		portfolio.TotalPeriodicOutlay.StringFixed(2),
		portfolio.TotalInterest.StringFixed(2),
		portfolio.DebtFreeAfter)

	// --- Step 7: Delete ---
	fmt.Println("--- Step 7: Delete ---")
	if err := loanService.DeleteLoan(ctx, stuck.ID); err != nil {
		log.Fatal(err)
	}
	loans, err := loanService.ListLoans(ctx)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Loans remaining: %d (Expected: 2)\n", len(loans))

	fmt.Println("\n=== Example Complete ===")
}

func printSchedule(ctx context.Context, loanService *services.LoanService, id uuid.UUID) {
	loan, schedule, err := loanService.LoanSchedule(ctx, id)
	if err != nil {
		log.Fatal(err)
	}

	summary := schedule.Summary
	fmt.Printf("%s: payment $%s + extra $%s, paid off in %d of %d periods (%d saved)\n",
		loan.Title,
		summary.PeriodicPayment.StringFixed(2),
		summary.ExtraPayment.StringFixed(2),
		summary.PayoffPeriods,
		summary.NominalPeriods,
		summary.PeriodsSaved())
	fmt.Printf("Total interest: $%s\n", summary.TotalInterest.StringFixed(2))

	fmt.Printf("%6s %14s %12s %12s %12s\n", "Period", "Balance", "Principal", "Interest", "Extra")
	for i, entry := range schedule.Entries {
		if i >= 3 && i < len(schedule.Entries)-2 {
			continue
		}
		fmt.Printf("%6d %14s %12s %12s %12s\n",
			entry.Period,
			entry.RemainingBalance.StringFixed(2),
			entry.PrincipalPaid.StringFixed(2),
			entry.InterestPaid.StringFixed(2),
			entry.ExtraPrincipalPaid.StringFixed(2))
	}
	fmt.Println()
}
