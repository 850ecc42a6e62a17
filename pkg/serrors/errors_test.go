package serrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseError_IsByIdentity(t *testing.T) {
	t.Parallel()

	errA := NewError("A", "same message", "")
	errB := NewError("B", "same message", "")
	wrapped := fmt.Errorf("context: %w", errA)

	assert.True(t, errors.Is(wrapped, errA))
	assert.False(t, errors.Is(wrapped, errB))
	assert.Equal(t, "same message", errA.Error())
}

func TestProcessValidatorErrors(t *testing.T) {
	t.Parallel()

	type input struct {
		Name  string `validate:"required"`
		Size  int    `validate:"gt=0"`
		Limit int    `validate:"lte=10"`
	}

	err := validator.New().Struct(input{Limit: 11})
	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs))

	got := ProcessValidatorErrors(verrs)
	require.Len(t, got, 3)
	assert.Equal(t, "Name is required", got["Name"].Error())
	assert.Equal(t, "Size must be greater than 0", got["Size"].Error())
	assert.Equal(t, "Limit must be at most 10", got["Limit"].Error())
	assert.Equal(t, "Limit: Limit must be at most 10; Name: Name is required; Size: Size must be greater than 0", got.Error())
}
