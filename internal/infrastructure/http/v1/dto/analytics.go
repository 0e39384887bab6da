package dto

import (
	"bizbooks/internal/core/apperror"
	"bizbooks/internal/core/types"
)

// CompareQuery holds the two periods of a comparison.
type CompareQuery struct {
	StartA string `form:"startA"`
	EndA   string `form:"endA"`
	StartB string `form:"startB"`
	EndB   string `form:"endB"`
}

// ToRanges parses both periods.
func (q CompareQuery) ToRanges() (types.DateRange, types.DateRange, error) {
	a, err := types.ParseDateRange(q.StartA, q.EndA)
	if err != nil {
		return a, a, apperror.NewInvalidField("periodA", err.Error())
	}
	b, err := types.ParseDateRange(q.StartB, q.EndB)
	if err != nil {
		return a, b, apperror.NewInvalidField("periodB", err.Error())
	}
	return a, b, nil
}
