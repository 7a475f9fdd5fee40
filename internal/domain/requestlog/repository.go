package requestlog

import (
	"context"
	"time"
)

// Repository persists API request audit records
type Repository interface {
	// Create stores the request and its "started" status log
	Create(ctx context.Context, req *Request) error

	// MarkSuccess appends a "success" status log
	MarkSuccess(ctx context.Context, requestID int64) error

	// MarkException stores the error message and appends an "exception" status log
	MarkException(ctx context.Context, requestID int64, message string) error

	// FindByID loads a request with its status logs and exceptions
	FindByID(ctx context.Context, requestID int64) (*Request, error)

	// Stats aggregates requests created at or after since
	Stats(ctx context.Context, since time.Time, topRoutes int) (*Stats, error)
}

// Stats summarises recorded requests
type Stats struct {
	Since          time.Time        `json:"since"`
	TotalRequests  int64            `json:"totalRequests"`
	ByStatus       map[Status]int64 `json:"byStatus"`
	TopRoutes      []RouteCount     `json:"topRoutes"`
	UniqueOrigins  int64            `json:"uniqueOrigins"`
	LastExceptions []Exception      `json:"lastExceptions"`
}

// RouteCount is the number of requests made to a route
type RouteCount struct {
	Route string `json:"route"`
	Count int64  `json:"count"`
}

// SuccessRate returns the fraction of completed requests that succeeded
func (s *Stats) SuccessRate() float64 {
	ok := s.ByStatus[StatusSuccess]
	failed := s.ByStatus[StatusException]
	if ok+failed == 0 {
		return 0
	}
	return float64(ok) / float64(ok+failed)
}
