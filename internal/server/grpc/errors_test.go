package grpc

import (
	"errors"
	"fmt"
	"testing"

	"github.com/dmitrijs2005/bookledger/internal/common"
	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestToStatus(t *testing.T) {
	tests := []struct {
		err  error
		code codes.Code
	}{
		{fmt.Errorf("%w: bad", common.ErrorValidation), codes.InvalidArgument},
		{common.ErrUnknownReference, codes.NotFound},
		{common.ErrLoanNotFound, codes.NotFound},
		{common.ErrAlreadyBorrowed, codes.AlreadyExists},
		{common.ErrDuplicateKey, codes.AlreadyExists},
		{common.ErrBookUnavailable, codes.FailedPrecondition},
		{common.ErrorUnauthorized, codes.Unauthenticated},
		{common.ErrorForbidden, codes.PermissionDenied},
		{common.ErrIntegrityFault, codes.Internal},
		{errors.New("db error: connection reset"), codes.Internal},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.code, status.Code(toStatus(tt.err)), tt.err.Error())
	}

	assert.Equal(t, "internal error", status.Convert(toStatus(errors.New("secret"))).Message())
}
