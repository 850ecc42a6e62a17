package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExitCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, exitOK, exitCode(nil))
	assert.Equal(t, 1, exitCode(errors.New("plain")))
	assert.Equal(t, exitValidation, exitCode(withCode(exitValidation, errors.New("no header"))))
	assert.Equal(t, exitDBWrite, exitCode(fmt.Errorf("wrapped: %w", withCode(exitDBWrite, errors.New("batch")))))
	assert.NoError(t, withCode(exitDB, nil))
}
