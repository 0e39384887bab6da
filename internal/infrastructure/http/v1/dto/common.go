// Package dto provides Data Transfer Objects for API requests/responses.
package dto

import (
	"time"

	"bizbooks/internal/core/apperror"
	"bizbooks/internal/core/types"
)

// ListResponse wraps list results.
type ListResponse struct {
	Items any `json:"items"`
	Count int `json:"count"`
}

// NewListResponse wraps a slice.
func NewListResponse[T any](items []T) ListResponse {
	if items == nil {
		items = []T{}
	}
	return ListResponse{Items: items, Count: len(items)}
}

// SuccessResponse is a simple acknowledgement.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// DateRangeQuery is the optional inclusive ?start=&end= filter.
type DateRangeQuery struct {
	Start string `form:"start"`
	End   string `form:"end"`
}

// ToRange parses the bounds.
func (q DateRangeQuery) ToRange() (types.DateRange, error) {
	r, err := types.ParseDateRange(q.Start, q.End)
	if err != nil {
		return r, apperror.NewInvalidField("dateRange", err.Error())
	}
	return r, nil
}

// ParseOptionalDate returns nil for an empty string.
func ParseOptionalDate(field, s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := types.ParseDate(s)
	if err != nil {
		return nil, apperror.NewInvalidField(field, err.Error())
	}
	return &t, nil
}

// ParseTimestamp accepts RFC 3339 or a bare date; empty means now.
func ParseTimestamp(field, s string, now time.Time) (time.Time, error) {
	if s == "" {
		return now.UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := types.ParseDate(s)
	if err != nil {
		return time.Time{}, apperror.NewInvalidField(field, "expected RFC 3339 timestamp or YYYY-MM-DD")
	}
	return t, nil
}
