package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/livefire2015/ez-amortifier/src/models"
)

// CachedSchedule is a computed schedule with its summary
type CachedSchedule struct {
	Summary models.ScheduleSummary `json:"summary"`
	Entries []models.ScheduleEntry `json:"entries"`
}

// ScheduleCache stores computed schedules keyed by TermsKey.
// Schedules are pure functions of their terms, so entries never go stale; TTLs only bound memory.
type ScheduleCache interface {
	Get(ctx context.Context, key string) (*CachedSchedule, bool)
	Set(ctx context.Context, key string, value *CachedSchedule) error
	Delete(ctx context.Context, key string) error
}

// TermsKey fingerprints loan terms at a given engine precision
func TermsKey(terms models.LoanTerms, precision int32) string {
	raw := fmt.Sprintf("%s|%s|%d|%s|%d",
		terms.Principal.String(),
		terms.PeriodicRate.String(),
		terms.NumberOfPeriods,
		terms.ExtraPayment.String(),
		precision,
	)
	sum := sha256.Sum256([]byte(raw))
	return "schedule:" + hex.EncodeToString(sum[:16])
}

// NopScheduleCache never stores anything
type NopScheduleCache struct{}

func (NopScheduleCache) Get(ctx context.Context, key string) (*CachedSchedule, bool) {
	return nil, false
}

func (NopScheduleCache) Set(ctx context.Context, key string, value *CachedSchedule) error {
	return nil
}

func (NopScheduleCache) Delete(ctx context.Context, key string) error {
	return nil
}
