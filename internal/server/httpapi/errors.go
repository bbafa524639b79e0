package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/bookledger/internal/common"
	"github.com/gin-gonic/gin"
)

var errorStatuses = []struct {
	err    error
	status int
	msg    string
}{
	{common.ErrorValidation, http.StatusBadRequest, ""},
	{common.ErrUnknownReference, http.StatusNotFound, "unknown user or book"},
	{common.ErrLoanNotFound, http.StatusNotFound, "loan not found"},
	{common.ErrAlreadyBorrowed, http.StatusConflict, "you have already borrowed this book"},
	{common.ErrBookUnavailable, http.StatusConflict, "book not available"},
	{common.ErrDuplicateKey, http.StatusConflict, "user already exists"},
	{common.ErrorUnauthorized, http.StatusUnauthorized, "invalid credentials"},
	{common.ErrorForbidden, http.StatusForbidden, "forbidden"},
}

// statusFor maps a service error to an HTTP status and client message.
// Anything unrecognised, including integrity faults, is a 500.
func statusFor(err error) (int, string) {
	for _, e := range errorStatuses {
		if errors.Is(err, e.err) {
			if e.msg == "" {
				return e.status, err.Error()
			}
			return e.status, e.msg
		}
	}
	return http.StatusInternalServerError, "internal error"
}

func writeError(c *gin.Context, err error) {
	status, msg := statusFor(err)
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg})
}
