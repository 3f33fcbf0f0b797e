package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/livefire2015/ez-amortifier/src/models"
	"go.uber.org/zap"

	_ "github.com/lib/pq"
)

// PostgresLoanRepository stores loans in PostgreSQL with NUMERIC amounts
type PostgresLoanRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPostgresLoanRepository connects to dsn and migrates the schema
func NewPostgresLoanRepository(ctx context.Context, dsn string, logger *zap.Logger) (*PostgresLoanRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("postgres DSN is required")
	}

	migrateDB, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open migration database: %w", err)
	}
	if err := runMigrations(migrateDB, BackendPostgres); err != nil {
		return nil, err
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres database: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	logger.Info("Postgres loan repository ready")

	return &PostgresLoanRepository{db: db, logger: logger}, nil
}

func (r *PostgresLoanRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Create inserts a new loan
func (r *PostgresLoanRepository) Create(ctx context.Context, loan *models.Loan) error {
	if loan.ID == uuid.Nil {
		loan.ID = uuid.New()
	}

	query := `
		INSERT INTO loans (
			id, title, principal, annual_rate_percent, term, term_unit,
			extra_payment, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(ctx, query,
		loan.ID,
		loan.Title,
		loan.Principal,
		loan.AnnualRatePercent,
		loan.Term,
		string(loan.TermUnit),
		loan.ExtraPayment,
		loan.CreatedAt,
		loan.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert loan: %w", err)
	}

	r.logger.Debug("Loan saved", zap.String("id", loan.ID.String()), zap.String("title", loan.Title))
	return nil
}

// Get retrieves a loan by ID
func (r *PostgresLoanRepository) Get(ctx context.Context, id uuid.UUID) (*models.Loan, error) {
	query := `
		SELECT id, title, principal, annual_rate_percent, term, term_unit,
			extra_payment, created_at, updated_at
		FROM loans
		WHERE id = $1
	`

	loan, err := scanPostgresLoan(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrLoanNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get loan: %w", err)
	}
	return loan, nil
}

// List returns all loans in creation order
func (r *PostgresLoanRepository) List(ctx context.Context) ([]models.Loan, error) {
	query := `
		SELECT id, title, principal, annual_rate_percent, term, term_unit,
			extra_payment, created_at, updated_at
		FROM loans
		ORDER BY created_at, id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list loans: %w", err)
	}
	defer rows.Close()

	var loans []models.Loan
	for rows.Next() {
		loan, err := scanPostgresLoan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan loan: %w", err)
		}
		loans = append(loans, *loan)
	}

	return loans, rows.Err()
}

// Update writes the financial fields of a loan
func (r *PostgresLoanRepository) Update(ctx context.Context, loan *models.Loan) error {
	loan.UpdatedAt = time.Now()

	query := `
		UPDATE loans
		SET principal = $1, annual_rate_percent = $2, term = $3, term_unit = $4,
			extra_payment = $5, updated_at = $6
		WHERE id = $7
	`

	result, err := r.db.ExecContext(ctx, query,
		loan.Principal,
		loan.AnnualRatePercent,
		loan.Term,
		string(loan.TermUnit),
		loan.ExtraPayment,
		loan.UpdatedAt,
		loan.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update loan: %w", err)
	}
	return expectOneRow(result)
}

// Rename changes the title of a loan
func (r *PostgresLoanRepository) Rename(ctx context.Context, id uuid.UUID, title string) error {
	query := `UPDATE loans SET title = $1, updated_at = NOW() WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, strings.TrimSpace(title), id)
	if err != nil {
		return fmt.Errorf("failed to rename loan: %w", err)
	}
	return expectOneRow(result)
}

// Delete removes a loan
func (r *PostgresLoanRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM loans WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete loan: %w", err)
	}
	return expectOneRow(result)
}

func scanPostgresLoan(row rowScanner) (*models.Loan, error) {
	var (
		loan     models.Loan
		termUnit string
	)

	err := row.Scan(
		&loan.ID,
		&loan.Title,
		&loan.Principal,
		&loan.AnnualRatePercent,
		&loan.Term,
		&termUnit,
		&loan.ExtraPayment,
		&loan.CreatedAt,
		&loan.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	loan.TermUnit = models.TermUnit(termUnit)
	return &loan, nil
}
