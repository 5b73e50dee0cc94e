package utils

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{NotFound("reservation %s not found", "r1"), http.StatusNotFound},
		{InvalidOperation("overlap", "dates taken"), http.StatusUnprocessableEntity},
		{Conflict("busy", "try again"), http.StatusConflict},
		{fmt.Errorf("create: %w", Conflict("concurrent_update", "raced")), http.StatusConflict},
		{errors.New("mongo down"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.status, HTTPStatus(tc.err), tc.err.Error())
	}
}

func TestErrorKindsAndCodes(t *testing.T) {
	cause := errors.New("lock held")
	err := fmt.Errorf("edit: %w", Conflict("busy", "accommodation %s is busy", "acc-x").Wrap(cause))

	assert.True(t, IsConflict(err))
	assert.False(t, IsNotFound(err))
	assert.False(t, IsInvalidOperation(err))
	assert.Equal(t, "busy", ErrorCode(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "busy: accommodation acc-x is busy", errors.Unwrap(err).Error())

	assert.Equal(t, "", ErrorCode(cause))
	assert.True(t, IsNotFound(NotFound("x")))
	assert.Equal(t, "not_found", ErrorCode(NotFound("x")))
}
