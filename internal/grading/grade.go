// Package grading converts raw KHS scores into letter grades and term averages.
package grading

import (
	"github.com/shopspring/decimal"

	"github.com/Spok95/siakad/internal/apperr"
)

// Grade is the derived pair stored next to every raw score.
type Grade struct {
	Letter string
	Point  int
}

var (
	MinScore = decimal.NewFromInt(1)
	MaxScore = decimal.NewFromInt(100)

	fifty   = decimal.NewFromInt(50)
	sixty   = decimal.NewFromInt(60)
	seventy = decimal.NewFromInt(70)
	eighty  = decimal.NewFromInt(80)
)

// MapScore is the table the service applies on every create and update.
func MapScore(s decimal.Decimal) Grade { return MapScoreB(s) }

// MapScoreA uses exclusive lower bounds and gives E one point.
func MapScoreA(s decimal.Decimal) Grade {
	switch {
	case s.GreaterThan(eighty):
		return Grade{"A", 4}
	case s.GreaterThan(seventy):
		return Grade{"B", 3}
	case s.GreaterThan(sixty):
		return Grade{"C", 2}
	case s.GreaterThan(fifty):
		return Grade{"D", 1}
	default:
		return Grade{"E", 1}
	}
}

// MapScoreB uses inclusive lower bounds and gives E zero points.
func MapScoreB(s decimal.Decimal) Grade {
	switch {
	case s.GreaterThanOrEqual(eighty):
		return Grade{"A", 4}
	case s.GreaterThanOrEqual(seventy):
		return Grade{"B", 3}
	case s.GreaterThanOrEqual(sixty):
		return Grade{"C", 2}
	case s.GreaterThanOrEqual(fifty):
		return Grade{"D", 1}
	default:
		return Grade{"E", 0}
	}
}

// ValidateScore rejects scores outside [1,100] or with more than two decimals.
func ValidateScore(s decimal.Decimal) error {
	if s.LessThan(MinScore) || s.GreaterThan(MaxScore) {
		return apperr.FieldValidation("nilai", "Ensure this value is between 1 and 100.")
	}
	if !s.Equal(s.Truncate(2)) {
		return apperr.FieldValidation("nilai", "Ensure that there are no more than 2 decimal places.")
	}
	return nil
}
