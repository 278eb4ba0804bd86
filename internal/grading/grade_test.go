package grading

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/Spok95/siakad/internal/apperr"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestMapScoreB_Boundaries(t *testing.T) {
	cases := []struct {
		score  string
		letter string
		point  int
	}{
		{"100", "A", 4},
		{"80", "A", 4},
		{"79.99", "B", 3},
		{"70", "B", 3},
		{"69.99", "C", 2},
		{"60", "C", 2},
		{"59.99", "D", 1},
		{"50", "D", 1},
		{"49.99", "E", 0},
		{"1", "E", 0},
	}
	for _, c := range cases {
		g := MapScoreB(d(c.score))
		assert.Equal(t, Grade{c.letter, c.point}, g, "score %s", c.score)
	}
}

func TestMapScoreA_Boundaries(t *testing.T) {
	cases := []struct {
		score  string
		letter string
		point  int
	}{
		{"80.01", "A", 4},
		{"80", "B", 3},
		{"70", "C", 2},
		{"60", "D", 1},
		{"50.01", "D", 1},
		{"50", "E", 1},
		{"1", "E", 1},
	}
	for _, c := range cases {
		assert.Equal(t, Grade{c.letter, c.point}, MapScoreA(d(c.score)), "score %s", c.score)
	}
}

func TestMapScore_MonotonicOverDomain(t *testing.T) {
	for _, mapper := range []func(decimal.Decimal) Grade{MapScore, MapScoreA, MapScoreB} {
		step := d("0.01")
		prev := mapper(MinScore)
		for s := MinScore.Add(step); s.LessThanOrEqual(MaxScore); s = s.Add(step) {
			g := mapper(s)
			if g.Point < prev.Point || g.Letter > prev.Letter {
				t.Fatalf("mapping not monotonic at %s: %v after %v", s, g, prev)
			}
			prev = g
		}
	}
}

func TestValidateScore(t *testing.T) {
	assert.NoError(t, ValidateScore(d("1")))
	assert.NoError(t, ValidateScore(d("100")))
	assert.NoError(t, ValidateScore(d("75.25")))

	for _, bad := range []string{"0.99", "100.01", "-5", "75.125"} {
		err := ValidateScore(d(bad))
		assert.True(t, errors.Is(err, apperr.ErrValidation), "score %s", bad)
		assert.Contains(t, apperr.FieldsOf(err), "nilai")
	}
}
