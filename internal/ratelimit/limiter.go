package ratelimit

import (
	"context"
	"time"
)

// Rule is a fixed-window limit: at most Limit requests per Window.
type Rule struct {
	Name   string
	Limit  int
	Window time.Duration
}

// Route classes.
var (
	Login   = Rule{Name: "login", Limit: 10, Window: time.Minute}
	Create  = Rule{Name: "create", Limit: 10, Window: time.Minute}
	General = Rule{Name: "general", Limit: 30, Window: time.Minute}
	Read    = Rule{Name: "read", Limit: 60, Window: time.Minute}
)

// Result is the outcome of one Allow call.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RetryAfter is how long the caller should wait, rounded up to whole seconds
// and never less than one.
func (r *Result) RetryAfter(now time.Time) time.Duration {
	d := r.ResetAt.Sub(now)
	if d < time.Second {
		return time.Second
	}
	return (d + time.Second - 1).Truncate(time.Second)
}

// Limiter counts a request against key under rule.
type Limiter interface {
	Allow(ctx context.Context, key string, rule Rule) (*Result, error)
}

func newResult(rule Rule, count int, resetAt time.Time) *Result {
	remaining := rule.Limit - count
	if remaining < 0 {
		remaining = 0
	}
	return &Result{
		Allowed:   count <= rule.Limit,
		Limit:     rule.Limit,
		Remaining: remaining,
		ResetAt:   resetAt,
	}
}
