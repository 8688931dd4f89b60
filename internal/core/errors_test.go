package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationError(t *testing.T) {
	verr := &ValidationError{}
	require.NoError(t, verr.ErrOrNil())

	verr.Add("name", "name is required")
	verr.Add("fieldKeys", "at least one field is required")
	err := verr.ErrOrNil()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "name: name is required; fieldKeys: at least one field is required", err.Error())
}

func TestNotFound(t *testing.T) {
	err := fmt.Errorf("delete form: %w", NotFound("form", 42))
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "form 42")
}

func TestStorageError(t *testing.T) {
	cause := errors.New("disk I/O error")
	err := NewStorageError("insert entry", cause)

	assert.ErrorIs(t, err, ErrStorage)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrNotFound)

	var serr *StorageError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "insert entry", serr.Op)

	assert.NoError(t, NewStorageError("noop", nil))
}
