package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindsSurviveWrapping(t *testing.T) {
	err := fmt.Errorf("save nilai: %w", Conflict("mata_kuliah", "duplicate"))

	assert.True(t, errors.Is(err, ErrConflict))
	assert.False(t, errors.Is(err, ErrValidation))
	assert.Equal(t, []string{"duplicate"}, FieldsOf(err)["mata_kuliah"])
	assert.Equal(t, "duplicate", DetailOf(err))
}

func TestWithAppendsFieldMessages(t *testing.T) {
	e := Validation("bad input").With("nilai", "too high").With("nilai", "not a number")

	require.Len(t, e.Fields["nilai"], 2)
	assert.Equal(t, "validation failed: bad input", e.Error())
}

func TestDetailOfPlainError(t *testing.T) {
	assert.Equal(t, "boom", DetailOf(errors.New("boom")))
	assert.Nil(t, FieldsOf(errors.New("boom")))
}
