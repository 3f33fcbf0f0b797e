package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/livefire2015/ez-amortifier/src/models"
)

// MemoryLoanRepository is an in-memory implementation of LoanRepository.
// Loans are copied in and out so callers never share records.
type MemoryLoanRepository struct {
	mu    sync.RWMutex
	loans map[uuid.UUID]models.Loan
	order []uuid.UUID
}

// NewMemoryLoanRepository creates a new in-memory loan repository.
func NewMemoryLoanRepository() *MemoryLoanRepository {
	return &MemoryLoanRepository{
		loans: make(map[uuid.UUID]models.Loan),
	}
}

func (r *MemoryLoanRepository) Create(ctx context.Context, loan *models.Loan) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if loan.ID == uuid.Nil {
		loan.ID = uuid.New()
	}
	r.loans[loan.ID] = *loan
	r.order = append(r.order, loan.ID)
	return nil
}

func (r *MemoryLoanRepository) Get(ctx context.Context, id uuid.UUID) (*models.Loan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	loan, ok := r.loans[id]
	if !ok {
		return nil, models.ErrLoanNotFound
	}
	return &loan, nil
}

func (r *MemoryLoanRepository) List(ctx context.Context) ([]models.Loan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	loans := make([]models.Loan, 0, len(r.order))
	for _, id := range r.order {
		loans = append(loans, r.loans[id])
	}
	return loans, nil
}

func (r *MemoryLoanRepository) Update(ctx context.Context, loan *models.Loan) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.loans[loan.ID]
	if !ok {
		return models.ErrLoanNotFound
	}

	loan.UpdatedAt = time.Now()
	stored.Principal = loan.Principal
	stored.AnnualRatePercent = loan.AnnualRatePercent
	stored.Term = loan.Term
	stored.TermUnit = loan.TermUnit
	stored.ExtraPayment = loan.ExtraPayment
	stored.UpdatedAt = loan.UpdatedAt
	r.loans[loan.ID] = stored
	return nil
}

func (r *MemoryLoanRepository) Rename(ctx context.Context, id uuid.UUID, title string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.loans[id]
	if !ok {
		return models.ErrLoanNotFound
	}
	stored.Title = strings.TrimSpace(title)
	stored.UpdatedAt = time.Now()
	r.loans[id] = stored
	return nil
}

func (r *MemoryLoanRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.loans[id]; !ok {
		return models.ErrLoanNotFound
	}
	delete(r.loans, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *MemoryLoanRepository) Close() error {
	return nil
}
