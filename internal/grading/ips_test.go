package grading

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Spok95/siakad/internal/apperr"
)

func TestIPS(t *testing.T) {
	cases := []struct {
		points []int
		want   string
	}{
		{[]int{4, 3, 2}, "3.00"},
		{[]int{4, 3, 3}, "3.33"},
		{[]int{4, 4, 3}, "3.67"},
		{[]int{0}, "0.00"},
		{[]int{4}, "4.00"},
	}
	for _, c := range cases {
		ips, err := IPS(c.points)
		require.NoError(t, err)
		assert.Equal(t, c.want, ips.StringFixed(2), "points %v", c.points)
	}
}

func TestIPS_EmptyIsDomainError(t *testing.T) {
	_, err := IPS(nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrDomain))
}

func TestStatusOf(t *testing.T) {
	two, _ := IPS([]int{2, 2})
	assert.Equal(t, Fail, StatusOf(two))

	above, _ := IPS([]int{2, 3})
	assert.Equal(t, Pass, StatusOf(above))
	assert.Equal(t, "LULUS", Pass.Label())
	assert.Equal(t, "TIDAK LULUS", Fail.Label())
}

func TestSum(t *testing.T) {
	got := Sum([]CourseLine{{Point: 4, SKS: 3}, {Point: 2, SKS: 2}})
	assert.Equal(t, Totals{SKS: 5, Mutu: 16}, got)
}
