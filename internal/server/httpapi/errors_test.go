package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/dmitrijs2005/bookledger/internal/common"
	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("%w: title is required", common.ErrorValidation), http.StatusBadRequest},
		{common.ErrUnknownReference, http.StatusNotFound},
		{common.ErrLoanNotFound, http.StatusNotFound},
		{common.ErrAlreadyBorrowed, http.StatusConflict},
		{common.ErrBookUnavailable, http.StatusConflict},
		{common.ErrDuplicateKey, http.StatusConflict},
		{common.ErrorUnauthorized, http.StatusUnauthorized},
		{common.ErrorForbidden, http.StatusForbidden},
		{fmt.Errorf("%w: overflow", common.ErrIntegrityFault), http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		status, msg := statusFor(tt.err)
		assert.Equal(t, tt.status, status, tt.err.Error())
		assert.NotEmpty(t, msg)
	}

	_, msg := statusFor(fmt.Errorf("%w: title is required", common.ErrorValidation))
	assert.Contains(t, msg, "title is required")

	_, msg = statusFor(errors.New("pq: secret detail"))
	assert.Equal(t, "internal error", msg)
}

func TestBearerToken(t *testing.T) {
	tok, ok := bearerToken("Bearer abc")
	assert.True(t, ok)
	assert.Equal(t, "abc", tok)

	tok, ok = bearerToken("bearer  xyz ")
	assert.True(t, ok)
	assert.Equal(t, "xyz", tok)

	for _, h := range []string{"", "Bearer", "Bearer ", "Basic abc", "abc"} {
		_, ok := bearerToken(h)
		assert.False(t, ok, h)
	}
}
