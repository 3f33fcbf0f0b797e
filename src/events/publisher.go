package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/livefire2015/ez-amortifier/src/models"
)

// LoanEventType represents what happened to a loan
type LoanEventType string

const (
	LoanCreated LoanEventType = "created"
	LoanUpdated LoanEventType = "updated"
	LoanRenamed LoanEventType = "renamed"
	LoanDeleted LoanEventType = "deleted"
)

// LoanEvent is published after every successful loan change
type LoanEvent struct {
	ID        uuid.UUID     `json:"id"`
	Type      LoanEventType `json:"type"`
	LoanID    uuid.UUID     `json:"loan_id"`
	Title     string        `json:"title,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

// RoutingKey returns the topic routing key for the event
func (e LoanEvent) RoutingKey() string {
	return "loan." + string(e.Type)
}

// NewLoanEvent builds an event for loan
func NewLoanEvent(eventType LoanEventType, loan *models.Loan) LoanEvent {
	return LoanEvent{
		ID:        uuid.New(),
		Type:      eventType,
		LoanID:    loan.ID,
		Title:     loan.Title,
		Timestamp: time.Now().UTC(),
	}
}

// Publisher delivers loan events
type Publisher interface {
	Publish(ctx context.Context, event LoanEvent) error
	Close() error
}

// NopPublisher drops every event
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, event LoanEvent) error {
	return nil
}

func (NopPublisher) Close() error {
	return nil
}
