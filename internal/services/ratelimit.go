package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yopdevs/platform/backend/internal/metrics"
	"github.com/yopdevs/platform/backend/internal/repositories"
)

// Decision is the outcome of a quota check.
type Decision struct {
	Kind     string    `json:"kind"`
	Limit    int       `json:"limit"`
	Used     int64     `json:"used"`
	Allowed  bool      `json:"allowed"`
	ResetsAt time.Time `json:"resets_at"`
}

// RateLimiter enforces per-user daily creation quotas. A day starts at
// midnight in the configured location.
type RateLimiter struct {
	repo    repositories.QuotaRepository
	loc     *time.Location
	now     func() time.Time
	metrics *metrics.Metrics
}

// NewRateLimiter creates a RateLimiter. A nil loc means time.Local.
func NewRateLimiter(repo repositories.QuotaRepository, loc *time.Location, m *metrics.Metrics) *RateLimiter {
	if loc == nil {
		loc = time.Local
	}
	return &RateLimiter{repo: repo, loc: loc, now: time.Now, metrics: m}
}

// WithClock replaces the time source.
func (l *RateLimiter) WithClock(now func() time.Time) *RateLimiter {
	l.now = now
	return l
}

// Now returns the limiter's current time.
func (l *RateLimiter) Now() time.Time {
	return l.now()
}

// StartOfDay returns the midnight that starts t's calendar day.
func (l *RateLimiter) StartOfDay(t time.Time) time.Time {
	t = t.In(l.loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, l.loc)
}

// CheckAndCount reports whether userID may create one more kind today. It does
// not reserve anything.
func (l *RateLimiter) CheckAndCount(ctx context.Context, userID string, kind repositories.QuotaKind, limit int) (Decision, error) {
	now := l.now()
	start := l.StartOfDay(now)
	used, err := l.repo.CountCreatedSince(ctx, kind, userID, start)
	if err != nil {
		return Decision{}, fmt.Errorf("failed to count %s: %w", kind, err)
	}
	return l.decision(kind, limit, used, start), nil
}

// Create inserts row only if userID is still under limit for kind today. The
// count and the insert are atomic. A denial returns *QuotaExceededError and
// writes nothing.
func (l *RateLimiter) Create(ctx context.Context, userID string, kind repositories.QuotaKind, limit int, row interface{}) (Decision, error) {
	start := l.StartOfDay(l.now())
	used, err := l.repo.CreateWithinQuota(ctx, kind, userID, start, limit, row)
	d := l.decision(kind, limit, used, start)
	switch {
	case errors.Is(err, repositories.ErrQuotaExceeded):
		d.Allowed = false
		l.metrics.QuotaDecision(string(kind), false)
		return d, &QuotaExceededError{Kind: string(kind), Limit: limit}
	case err != nil:
		return d, fmt.Errorf("failed to create %s: %w", kind, err)
	}
	l.metrics.QuotaDecision(string(kind), true)
	d.Used = used + 1
	d.Allowed = d.Used < int64(limit)
	return d, nil
}

func (l *RateLimiter) decision(kind repositories.QuotaKind, limit int, used int64, start time.Time) Decision {
	return Decision{
		Kind:     string(kind),
		Limit:    limit,
		Used:     used,
		Allowed:  used < int64(limit),
		ResetsAt: start.AddDate(0, 0, 1),
	}
}
