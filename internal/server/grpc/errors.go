package grpc

import (
	"errors"

	"github.com/dmitrijs2005/bookledger/internal/common"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var errorCodes = []struct {
	err  error
	code codes.Code
}{
	{common.ErrorValidation, codes.InvalidArgument},
	{common.ErrUnknownReference, codes.NotFound},
	{common.ErrLoanNotFound, codes.NotFound},
	{common.ErrAlreadyBorrowed, codes.AlreadyExists},
	{common.ErrDuplicateKey, codes.AlreadyExists},
	{common.ErrBookUnavailable, codes.FailedPrecondition},
	{common.ErrorUnauthorized, codes.Unauthenticated},
	{common.ErrorForbidden, codes.PermissionDenied},
}

// toStatus converts a service error to a gRPC status error. Unknown errors
// become Internal without leaking their text.
func toStatus(err error) error {
	for _, e := range errorCodes {
		if errors.Is(err, e.err) {
			return status.Error(e.code, err.Error())
		}
	}
	return status.Error(codes.Internal, "internal error")
}
