package errkind

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapIsCompatibleWithKindAndCause(t *testing.T) {
	cause := errors.New("disk full")
	wrapped := Wrap(ErrIO, cause)

	assert.True(t, errors.Is(wrapped, ErrIO))
	assert.True(t, errors.Is(wrapped, cause))
	assert.False(t, errors.Is(wrapped, ErrValidation))
	assert.Equal(t, cause.Error(), wrapped.Error())
}

func TestWrapNilReturnsNil(t *testing.T) {
	assert.NoError(t, Wrap(ErrValidation, nil))
}
