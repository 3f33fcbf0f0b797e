package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/livefire2015/ez-amortifier/src/models"
	"go.uber.org/zap"

	_ "modernc.org/sqlite"
)

// SQLiteLoanRepository stores loans in a SQLite file.
// Amounts are kept as TEXT and timestamps as unix milliseconds.
type SQLiteLoanRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSQLiteLoanRepository opens (creating if needed) the database at dbPath and migrates it
func NewSQLiteLoanRepository(ctx context.Context, dbPath string, logger *zap.Logger) (*SQLiteLoanRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if strings.TrimSpace(dbPath) == "" {
		return nil, errors.New("sqlite database path is required")
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	dsn := dbPath + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"

	migrateDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open migration database: %w", err)
	}
	if err := runMigrations(migrateDB, BackendSQLite); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	logger.Info("SQLite loan repository ready", zap.String("path", dbPath))

	return &SQLiteLoanRepository{db: db, logger: logger}, nil
}

func (r *SQLiteLoanRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Create inserts a new loan
func (r *SQLiteLoanRepository) Create(ctx context.Context, loan *models.Loan) error {
	if loan.ID == uuid.Nil {
		loan.ID = uuid.New()
	}

	query := `
		INSERT INTO loans (
			id, title, principal, annual_rate_percent, term, term_unit,
			extra_payment, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		loan.ID.String(),
		loan.Title,
		loan.Principal.String(),
		loan.AnnualRatePercent.String(),
		loan.Term,
		string(loan.TermUnit),
		loan.ExtraPayment.String(),
		loan.CreatedAt.UnixMilli(),
		loan.UpdatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert loan: %w", err)
	}

	r.logger.Debug("Loan saved", zap.String("id", loan.ID.String()), zap.String("title", loan.Title))
	return nil
}

// Get retrieves a loan by ID
func (r *SQLiteLoanRepository) Get(ctx context.Context, id uuid.UUID) (*models.Loan, error) {
	query := `
		SELECT id, title, principal, annual_rate_percent, term, term_unit,
			extra_payment, created_at, updated_at
		FROM loans
		WHERE id = ?
	`

	loan, err := scanSQLiteLoan(r.db.QueryRowContext(ctx, query, id.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrLoanNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get loan: %w", err)
	}
	return loan, nil
}

// List returns all loans in creation order
func (r *SQLiteLoanRepository) List(ctx context.Context) ([]models.Loan, error) {
	query := `
		SELECT id, title, principal, annual_rate_percent, term, term_unit,
			extra_payment, created_at, updated_at
		FROM loans
		ORDER BY created_at, rowid
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list loans: %w", err)
	}
	defer rows.Close()

	var loans []models.Loan
	for rows.Next() {
		loan, err := scanSQLiteLoan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan loan: %w", err)
		}
		loans = append(loans, *loan)
	}

	return loans, rows.Err()
}

// Update writes the financial fields of a loan
func (r *SQLiteLoanRepository) Update(ctx context.Context, loan *models.Loan) error {
	loan.UpdatedAt = time.Now()

	query := `
		UPDATE loans
		SET principal = ?, annual_rate_percent = ?, term = ?, term_unit = ?,
			extra_payment = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		loan.Principal.String(),
		loan.AnnualRatePercent.String(),
		loan.Term,
		string(loan.TermUnit),
		loan.ExtraPayment.String(),
		loan.UpdatedAt.UnixMilli(),
		loan.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to update loan: %w", err)
	}
	return expectOneRow(result)
}

// Rename changes the title of a loan
func (r *SQLiteLoanRepository) Rename(ctx context.Context, id uuid.UUID, title string) error {
	query := `UPDATE loans SET title = ?, updated_at = ? WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, strings.TrimSpace(title), time.Now().UnixMilli(), id.String())
	if err != nil {
		return fmt.Errorf("failed to rename loan: %w", err)
	}
	return expectOneRow(result)
}

// Delete removes a loan
func (r *SQLiteLoanRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM loans WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete loan: %w", err)
	}
	return expectOneRow(result)
}

func scanSQLiteLoan(row rowScanner) (*models.Loan, error) {
	var (
		loan      models.Loan
		id        string
		termUnit  string
		createdAt int64
		updatedAt int64
	)

	err := row.Scan(
		&id,
		&loan.Title,
		&loan.Principal,
		&loan.AnnualRatePercent,
		&loan.Term,
		&termUnit,
		&loan.ExtraPayment,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	loan.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid loan id %q: %w", id, err)
	}
	loan.TermUnit = models.TermUnit(termUnit)
	loan.CreatedAt = time.UnixMilli(createdAt)
	loan.UpdatedAt = time.UnixMilli(updatedAt)

	return &loan, nil
}

func expectOneRow(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return models.ErrLoanNotFound
	}
	return nil
}
