package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/livefire2015/ez-amortifier/src/cache"
	"github.com/livefire2015/ez-amortifier/src/events"
	"github.com/livefire2015/ez-amortifier/src/models"
	"github.com/livefire2015/ez-amortifier/src/repository"
	"go.uber.org/zap"
)

// LoanService handles loan records and their amortization schedules
type LoanService struct {
	repo      repository.LoanRepository
	engine    *AmortizationEngine
	cache     cache.ScheduleCache
	publisher events.Publisher
	logger    *zap.Logger
}

// NewLoanService creates a new loan service.
// A nil cache or publisher disables caching or event delivery.
func NewLoanService(
	repo repository.LoanRepository,
	engine *AmortizationEngine,
	scheduleCache cache.ScheduleCache,
	publisher events.Publisher,
	logger *zap.Logger,
) *LoanService {
	if scheduleCache == nil {
		scheduleCache = cache.NopScheduleCache{}
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoanService{
		repo:      repo,
		engine:    engine,
		cache:     scheduleCache,
		publisher: publisher,
		logger:    logger,
	}
}

// Engine returns the amortization engine used by the service
func (s *LoanService) Engine() *AmortizationEngine {
	return s.engine
}

// CreateLoan parses the fields and stores a new loan
func (s *LoanService) CreateLoan(ctx context.Context, fields models.LoanFields) (*models.Loan, error) {
	parsed, err := models.ParseLoanFields(fields)
	if err != nil {
		return nil, err
	}

	loan := models.NewLoan(fields.Title, parsed)
	if err := loan.Validate(); err != nil {
		return nil, fmt.Errorf("invalid loan: %w", err)
	}

	if err := s.repo.Create(ctx, &loan); err != nil {
		return nil, fmt.Errorf("failed to create loan: %w", err)
	}

	s.logger.Info("loan created",
		zap.String("loan_id", loan.ID.String()),
		zap.String("title", loan.Title),
		zap.String("principal", loan.Principal.String()))
	s.publish(ctx, events.LoanCreated, &loan)

	return &loan, nil
}

// GetLoan retrieves a loan by ID
func (s *LoanService) GetLoan(ctx context.Context, id uuid.UUID) (*models.Loan, error) {
	loan, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get loan %s: %w", id, err)
	}
	return loan, nil
}

// ListLoans returns every loan in creation order
func (s *LoanService) ListLoans(ctx context.Context) ([]models.Loan, error) {
	loans, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list loans: %w", err)
	}
	return loans, nil
}

// UpdateLoan replaces the financial fields of a loan; the title is left alone
func (s *LoanService) UpdateLoan(ctx context.Context, id uuid.UUID, fields models.LoanFields) (*models.Loan, error) {
	parsed, err := models.ParseLoanFields(fields)
	if err != nil {
		return nil, err
	}

	loan, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get loan %s: %w", id, err)
	}

	previous := loan.Terms()
	loan.ApplyFields(parsed)
	if err := loan.Validate(); err != nil {
		return nil, fmt.Errorf("invalid loan: %w", err)
	}

	if err := s.repo.Update(ctx, loan); err != nil {
		return nil, fmt.Errorf("failed to update loan %s: %w", id, err)
	}

	s.evict(ctx, previous)
	s.logger.Info("loan updated", zap.String("loan_id", id.String()))
	s.publish(ctx, events.LoanUpdated, loan)

	return loan, nil
}

// RenameLoan changes the title of a loan
func (s *LoanService) RenameLoan(ctx context.Context, id uuid.UUID, title string) (*models.Loan, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, models.ErrBlankTitle
	}

	if err := s.repo.Rename(ctx, id, title); err != nil {
		return nil, fmt.Errorf("failed to rename loan %s: %w", id, err)
	}

	loan, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get loan %s: %w", id, err)
	}

	s.logger.Info("loan renamed", zap.String("loan_id", id.String()), zap.String("title", title))
	s.publish(ctx, events.LoanRenamed, loan)

	return loan, nil
}

// DeleteLoan removes a loan
func (s *LoanService) DeleteLoan(ctx context.Context, id uuid.UUID) error {
	loan, err := s.repo.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get loan %s: %w", id, err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete loan %s: %w", id, err)
	}

	s.evict(ctx, loan.Terms())
	s.logger.Info("loan deleted", zap.String("loan_id", id.String()))
	s.publish(ctx, events.LoanDeleted, loan)

	return nil
}

// LoanSchedule returns the full schedule of a stored loan
func (s *LoanService) LoanSchedule(ctx context.Context, id uuid.UUID) (*models.Loan, *cache.CachedSchedule, error) {
	loan, err := s.GetLoan(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	schedule, err := s.Schedule(ctx, loan.Terms())
	if err != nil {
		return loan, nil, err
	}
	return loan, schedule, nil
}

// LoanScheduleEntry returns a single period of a stored loan's schedule
func (s *LoanService) LoanScheduleEntry(ctx context.Context, id uuid.UUID, period int) (models.ScheduleEntry, error) {
	_, schedule, err := s.LoanSchedule(ctx, id)
	if err != nil {
		return models.ScheduleEntry{}, err
	}

	if period < 1 || period > len(schedule.Entries) {
		return models.ScheduleEntry{}, fmt.Errorf("period %d of %d: %w", period, len(schedule.Entries), models.ErrPeriodOutOfRange)
	}
	return schedule.Entries[period-1], nil
}

// Schedule computes the schedule for terms, going through the cache
func (s *LoanService) Schedule(ctx context.Context, terms models.LoanTerms) (*cache.CachedSchedule, error) {
	key := cache.TermsKey(terms, s.engine.Config().Precision)
	if cached, ok := s.cache.Get(ctx, key); ok {
		return cached, nil
	}

	summary, entries, err := s.engine.Summarize(terms)
	if err != nil {
		return nil, err
	}

	schedule := &cache.CachedSchedule{Summary: summary, Entries: entries}
	if err := s.cache.Set(ctx, key, schedule); err != nil {
		s.logger.Warn("failed to cache schedule", zap.String("key", key), zap.Error(err))
	}
	return schedule, nil
}

// Quote returns the payment breakdown for unsaved loan input
func (s *LoanService) Quote(ctx context.Context, fields models.LoanFields) (models.PaymentQuote, error) {
	parsed, err := models.ParseLoanFields(fields)
	if err != nil {
		return models.PaymentQuote{}, err
	}

	loan := models.NewLoan(fields.Title, parsed)
	return s.engine.Quote(loan.Terms())
}

// evict drops the cached schedule for terms
func (s *LoanService) evict(ctx context.Context, terms models.LoanTerms) {
	key := cache.TermsKey(terms, s.engine.Config().Precision)
	if err := s.cache.Delete(ctx, key); err != nil {
		s.logger.Warn("failed to evict schedule", zap.String("key", key), zap.Error(err))
	}
}

func (s *LoanService) publish(ctx context.Context, eventType events.LoanEventType, loan *models.Loan) {
	event := events.NewLoanEvent(eventType, loan)
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish loan event",
			zap.String("routing_key", event.RoutingKey()),
			zap.String("loan_id", loan.ID.String()),
			zap.Error(err))
	}
}
