package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/livefire2015/ez-amortifier/src/models"
	"github.com/livefire2015/ez-amortifier/src/services"
	"go.uber.org/zap"
)

// LoanHandler exposes loans, schedules and quotes over HTTP
type LoanHandler struct {
	loans     *services.LoanService
	portfolio *services.PortfolioService
	logger    *zap.Logger
}

// NewLoanHandler constructs the HTTP handler adapter.
func NewLoanHandler(loans *services.LoanService, portfolio *services.PortfolioService, logger *zap.Logger) *LoanHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoanHandler{loans: loans, portfolio: portfolio, logger: logger}
}

type renameRequest struct {
	Title string `json:"title"`
}

// List returns every loan
func (h *LoanHandler) List(c *gin.Context) {
	loans, err := h.loans.ListLoans(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := make([]LoanResponse, 0, len(loans))
	for i := range loans {
		resp = append(resp, newLoanResponse(&loans[i]))
	}
	c.JSON(http.StatusOK, gin.H{"loans": resp})
}

// Create stores a loan from raw fields
func (h *LoanHandler) Create(c *gin.Context) {
	var fields models.LoanFields
	if err := c.ShouldBindJSON(&fields); err != nil {
		h.logger.Warn("invalid loan payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	loan, err := h.loans.CreateLoan(c.Request.Context(), fields)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newLoanResponse(loan))
}

// Get returns one loan
func (h *LoanHandler) Get(c *gin.Context) {
	id, ok := h.loanID(c)
	if !ok {
		return
	}

	loan, err := h.loans.GetLoan(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newLoanResponse(loan))
}

// Update replaces the financial fields of a loan
func (h *LoanHandler) Update(c *gin.Context) {
	id, ok := h.loanID(c)
	if !ok {
		return
	}

	var fields models.LoanFields
	if err := c.ShouldBindJSON(&fields); err != nil {
		h.logger.Warn("invalid loan payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	loan, err := h.loans.UpdateLoan(c.Request.Context(), id, fields)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newLoanResponse(loan))
}

// Rename changes a loan's title
func (h *LoanHandler) Rename(c *gin.Context) {
	id, ok := h.loanID(c)
	if !ok {
		return
	}

	var req renameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	loan, err := h.loans.RenameLoan(c.Request.Context(), id, req.Title)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newLoanResponse(loan))
}

// Delete removes a loan
func (h *LoanHandler) Delete(c *gin.Context) {
	id, ok := h.loanID(c)
	if !ok {
		return
	}

	if err := h.loans.DeleteLoan(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Schedule returns a loan's full amortization schedule
func (h *LoanHandler) Schedule(c *gin.Context) {
	id, ok := h.loanID(c)
	if !ok {
		return
	}

	loan, schedule, err := h.loans.LoanSchedule(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	entries := make([]EntryResponse, 0, len(schedule.Entries))
	for _, entry := range schedule.Entries {
		entries = append(entries, newEntryResponse(entry))
	}

	c.JSON(http.StatusOK, ScheduleResponse{
		Loan:    newLoanResponse(loan),
		Summary: newSummaryResponse(schedule.Summary),
		Entries: entries,
	})
}

// ScheduleEntry jumps to a single payment period
func (h *LoanHandler) ScheduleEntry(c *gin.Context) {
	id, ok := h.loanID(c)
	if !ok {
		return
	}

	period, err := strconv.Atoi(c.Param("period"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "period must be a whole number"})
		return
	}

	entry, err := h.loans.LoanScheduleEntry(c.Request.Context(), id, period)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newEntryResponse(entry))
}

// Quote previews the payment for unsaved input
func (h *LoanHandler) Quote(c *gin.Context) {
	var fields models.LoanFields
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	quote, err := h.loans.Quote(c.Request.Context(), fields)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newQuoteResponse(quote))
}

// Portfolio summarizes every stored loan
func (h *LoanHandler) Portfolio(c *gin.Context) {
	summary, err := h.portfolio.Summarize(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPortfolioResponse(summary))
}

func (h *LoanHandler) loanID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid loan id"})
		return uuid.Nil, false
	}
	return id, true
}

func (h *LoanHandler) respondError(c *gin.Context, err error) {
	_ = c.Error(err)

	switch {
	case models.IsValidationError(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrLoanNotFound), errors.Is(err, models.ErrPeriodOutOfRange):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrNonAmortizingLoan):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
