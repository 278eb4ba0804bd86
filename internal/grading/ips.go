package grading

import (
	"github.com/shopspring/decimal"

	"github.com/Spok95/siakad/internal/apperr"
)

// Status is the pass/fail verdict printed on a transcript. It is never stored.
type Status string

const (
	Pass Status = "PASS"
	Fail Status = "FAIL"
)

// Label is the Indonesian wording used on the transcript document.
func (s Status) Label() string {
	if s == Pass {
		return "LULUS"
	}
	return "TIDAK LULUS"
}

var passThreshold = decimal.NewFromInt(2)

// IPS is the arithmetic mean of the grade points, rounded to two decimals.
// Credits are deliberately not used as weights.
func IPS(points []int) (decimal.Decimal, error) {
	if len(points) == 0 {
		return decimal.Zero, apperr.Domain("IPS is undefined for a KHS without grades")
	}
	sum := 0
	for _, p := range points {
		sum += p
	}
	return decimal.NewFromInt(int64(sum)).
		DivRound(decimal.NewFromInt(int64(len(points))), 2), nil
}

// StatusOf passes strictly above 2.00.
func StatusOf(ips decimal.Decimal) Status {
	if ips.GreaterThan(passThreshold) {
		return Pass
	}
	return Fail
}

// CourseLine is one graded course as the transcript sees it.
type CourseLine struct {
	Point int
	SKS   int
}

// Totals are the credit sums printed under the transcript table.
type Totals struct {
	SKS  int
	Mutu int // sum of point * SKS
}

func Sum(lines []CourseLine) Totals {
	var t Totals
	for _, l := range lines {
		t.SKS += l.SKS
		t.Mutu += l.Point * l.SKS
	}
	return t
}
