package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/livefire2015/ez-amortifier/src/models"
	"github.com/shopspring/decimal"
)

func newTestLoan(title string, createdAt time.Time) *models.Loan {
	loan := models.NewLoan(title, models.ParsedLoanFields{
		Principal:         decimal.RequireFromString("15000.50"),
		AnnualRatePercent: decimal.RequireFromString("6.875"),
		Term:              5,
		TermUnit:          models.TermUnitYears,
		ExtraPayment:      decimal.RequireFromString("25.75"),
	})
	loan.CreatedAt = createdAt
	loan.UpdatedAt = createdAt
	return &loan
}

func testLoanRepository(t *testing.T, repo LoanRepository) {
	ctx := context.Background()
	base := time.Now().Add(-time.Hour)

	car := newTestLoan("Car", base)
	house := newTestLoan("House", base.Add(time.Minute))

	for _, loan := range []*models.Loan{car, house} {
		if err := repo.Create(ctx, loan); err != nil {
			t.Fatalf("Create(%s) error = %v", loan.Title, err)
		}
	}

	got, err := repo.Get(ctx, car.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Title != "Car" {
		t.Errorf("Expected title Car, got %s", got.Title)
	}
	if !got.Principal.Equal(car.Principal) {
		t.Errorf("Expected principal %s, got %s", car.Principal, got.Principal)
	}
	if !got.AnnualRatePercent.Equal(car.AnnualRatePercent) {
		t.Errorf("Expected rate %s, got %s", car.AnnualRatePercent, got.AnnualRatePercent)
	}
	if !got.ExtraPayment.Equal(car.ExtraPayment) {
		t.Errorf("Expected extra %s, got %s", car.ExtraPayment, got.ExtraPayment)
	}
	if got.Term != 5 || got.TermUnit != models.TermUnitYears {
		t.Errorf("Expected term 5 years, got %d %s", got.Term, got.TermUnit)
	}
	if got.CreatedAt.UnixMilli() != car.CreatedAt.UnixMilli() {
		t.Errorf("Expected created at %v, got %v", car.CreatedAt, got.CreatedAt)
	}

	// Returned records are copies
	got.Title = "Changed"
	again, err := repo.Get(ctx, car.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if again.Title != "Car" {
		t.Errorf("Expected stored title to stay Car, got %s", again.Title)
	}

	loans, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(loans) != 2 {
		t.Fatalf("Expected 2 loans, got %d", len(loans))
	}
	if loans[0].ID != car.ID || loans[1].ID != house.ID {
		t.Errorf("Expected creation order Car, House; got %s, %s", loans[0].Title, loans[1].Title)
	}

	car.Principal = decimal.NewFromInt(9000)
	car.Term = 36
	car.TermUnit = models.TermUnitMonths
	car.ExtraPayment = decimal.Zero
	car.Title = "Ignored by update"
	if err := repo.Update(ctx, car); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	updated, err := repo.Get(ctx, car.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !updated.Principal.Equal(decimal.NewFromInt(9000)) {
		t.Errorf("Expected principal 9000, got %s", updated.Principal)
	}
	if updated.Term != 36 || updated.TermUnit != models.TermUnitMonths {
		t.Errorf("Expected term 36 months, got %d %s", updated.Term, updated.TermUnit)
	}
	if !updated.ExtraPayment.IsZero() {
		t.Errorf("Expected extra 0, got %s", updated.ExtraPayment)
	}
	if updated.Title != "Car" {
		t.Errorf("Expected update to keep title Car, got %s", updated.Title)
	}

	if err := repo.Rename(ctx, car.ID, "  Family car  "); err != nil {
		t.Fatalf("Rename() error = %v", err)
	}
	renamed, err := repo.Get(ctx, car.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if renamed.Title != "Family car" {
		t.Errorf("Expected title Family car, got %q", renamed.Title)
	}

	if err := repo.Delete(ctx, car.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := repo.Get(ctx, car.ID); !errors.Is(err, models.ErrLoanNotFound) {
		t.Errorf("Expected ErrLoanNotFound after delete, got %v", err)
	}

	loans, err = repo.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(loans) != 1 || loans[0].ID != house.ID {
		t.Errorf("Expected only House to remain, got %+v", loans)
	}

	missing := uuid.New()
	if err := repo.Update(ctx, &models.Loan{ID: missing, TermUnit: models.TermUnitMonths}); !errors.Is(err, models.ErrLoanNotFound) {
		t.Errorf("Update(missing) expected ErrLoanNotFound, got %v", err)
	}
	if err := repo.Rename(ctx, missing, "Nope"); !errors.Is(err, models.ErrLoanNotFound) {
		t.Errorf("Rename(missing) expected ErrLoanNotFound, got %v", err)
	}
	if err := repo.Delete(ctx, missing); !errors.Is(err, models.ErrLoanNotFound) {
		t.Errorf("Delete(missing) expected ErrLoanNotFound, got %v", err)
	}
}

func TestMemoryLoanRepository(t *testing.T) {
	repo := NewMemoryLoanRepository()
	defer repo.Close()

	testLoanRepository(t, repo)
}

func TestSQLiteLoanRepository(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "data", "loans.db")

	repo, err := NewSQLiteLoanRepository(context.Background(), dbPath, nil)
	if err != nil {
		t.Fatalf("NewSQLiteLoanRepository() error = %v", err)
	}
	defer repo.Close()

	testLoanRepository(t, repo)
}

func TestSQLiteLoanRepositoryReopen(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "loans.db")

	repo, err := NewSQLiteLoanRepository(ctx, dbPath, nil)
	if err != nil {
		t.Fatalf("NewSQLiteLoanRepository() error = %v", err)
	}
	loan := newTestLoan("Boat", time.Now())
	if err := repo.Create(ctx, loan); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	repo.Close()

	// Migrations are already applied on the second open
	reopened, err := NewSQLiteLoanRepository(ctx, dbPath, nil)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Get(ctx, loan.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Title != "Boat" {
		t.Errorf("Expected title Boat, got %s", got.Title)
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	repo, err := Open(ctx, Config{Backend: BackendMemory}, nil)
	if err != nil {
		t.Fatalf("Open(memory) error = %v", err)
	}
	if _, ok := repo.(*MemoryLoanRepository); !ok {
		t.Errorf("Expected *MemoryLoanRepository, got %T", repo)
	}

	repo, err = Open(ctx, Config{Backend: BackendSQLite, SQLitePath: filepath.Join(t.TempDir(), "open.db")}, nil)
	if err != nil {
		t.Fatalf("Open(sqlite) error = %v", err)
	}
	defer repo.Close()
	if _, ok := repo.(*SQLiteLoanRepository); !ok {
		t.Errorf("Expected *SQLiteLoanRepository, got %T", repo)
	}

	if _, err := Open(ctx, Config{Backend: "cassandra"}, nil); err == nil {
		t.Error("Expected error for unknown backend")
	}
	if _, err := Open(ctx, Config{Backend: BackendPostgres}, nil); err == nil {
		t.Error("Expected error for missing postgres DSN")
	}
}
