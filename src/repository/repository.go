package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/livefire2015/ez-amortifier/src/models"
	"go.uber.org/zap"
)

// LoanRepository stores loan records keyed by ID.
// Missing IDs yield models.ErrLoanNotFound.
type LoanRepository interface {
	Create(ctx context.Context, loan *models.Loan) error
	Get(ctx context.Context, id uuid.UUID) (*models.Loan, error)
	List(ctx context.Context) ([]models.Loan, error) // Creation order
	Update(ctx context.Context, loan *models.Loan) error
	Rename(ctx context.Context, id uuid.UUID, title string) error
	Delete(ctx context.Context, id uuid.UUID) error
	Close() error
}

// Backend names a storage implementation
type Backend string

const (
	BackendMemory   Backend = "memory"
	BackendSQLite   Backend = "sqlite"
	BackendPostgres Backend = "postgres"
)

// Config selects and configures a storage backend
type Config struct {
	Backend     Backend
	SQLitePath  string
	PostgresDSN string
}

// Open creates the repository named by cfg.Backend and runs its migrations
func Open(ctx context.Context, cfg Config, logger *zap.Logger) (LoanRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch cfg.Backend {
	case BackendMemory, "":
		return NewMemoryLoanRepository(), nil
	case BackendSQLite:
		return NewSQLiteLoanRepository(ctx, cfg.SQLitePath, logger.Named("repo.sqlite"))
	case BackendPostgres:
		return NewPostgresLoanRepository(ctx, cfg.PostgresDSN, logger.Named("repo.postgres"))
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}
