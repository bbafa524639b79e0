// Package common contains shared constants and sentinel errors used across
// bookledger components.
package common

import "time"

// AccessTokenHeaderName is the gRPC metadata key used to carry the access
// token on inbound requests. HTTP clients use the Authorization header.
const AccessTokenHeaderName = "access_token"

// LoanPeriodDays is the fixed borrowing period. Due dates are computed with
// calendar arithmetic (time.AddDate), not by adding a fixed duration.
const LoanPeriodDays = 14

// DefaultRequestTimeout bounds a single transport request.
const DefaultRequestTimeout = 10 * time.Second
