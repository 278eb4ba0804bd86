package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKHSSummarize(t *testing.T) {
	k := KHS{Grades: []GradeEntry{{Point: 4}, {Point: 3}, {Point: 2}}}
	k.Summarize()
	require.NotNil(t, k.IPS)
	assert.Equal(t, "3.00", k.IPS.String())

	k.Partial = true
	k.Summarize()
	assert.Nil(t, k.IPS)

	empty := KHS{}
	empty.Summarize()
	assert.Nil(t, empty.IPS)
}
