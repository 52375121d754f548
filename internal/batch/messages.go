package batch

import (
	"errors"

	"github.com/ggyhrr/gift-code/internal/century"
)

// Fixed user-facing result messages.
const (
	msgQuerying         = "querying player info"
	msgQueryFailed      = "player lookup failed"
	msgValidationFailed = "validation failed"
	msgAccountNotExists = "account does not exist"
	msgRedeemSuccess    = "gift code claimed"
	msgRedeemFailed     = "gift code redemption failed"
)

// LookupFailureMessage classifies a profile-lookup error into a user-facing
// message: the "account does not exist" code maps to its fixed message, any
// other service error surfaces the service's own message, and everything
// else (transport failures, malformed responses) falls back to the given
// generic message.
func LookupFailureMessage(err error, fallback string) string {
	var apiErr *century.APIError
	if errors.As(err, &apiErr) {
		if apiErr.ErrCode == century.ErrCodeAccountNotExists {
			return msgAccountNotExists
		}
		return apiErr.Error()
	}
	return fallback
}

// redeemFailureMessage classifies a redemption error; the century client has
// already mapped the known codes, so anything untyped is generic.
func redeemFailureMessage(err error) string {
	var redeemErr *century.RedeemError
	if errors.As(err, &redeemErr) {
		return redeemErr.Error()
	}
	return msgRedeemFailed
}
