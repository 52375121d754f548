package century

import "errors"

// Well-known service error codes (the err_code field of the envelope).
const (
	ErrCodeAccountNotExists = 40004
	ErrCodeAlreadyClaimed   = 40008
	ErrCodeNotFound         = 40014
	ErrCodeQuotaExceeded    = 40005
	ErrCodeExpired          = 40007
)

// APIError is a service-level failure from the player endpoint.
type APIError struct {
	Code    int    // envelope code
	ErrCode int    // classified error code, 0 if absent
	Msg     string // service-provided message
}

func (e *APIError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "unknown error"
}

// RedeemError is a service-level failure from the gift-code endpoint with
// the message already mapped from the known error codes.
type RedeemError struct {
	Code    int
	ErrCode int
	Msg     string
}

func (e *RedeemError) Error() string {
	return e.Msg
}

// IsAccountNotFound reports whether err is the service's "account does not
// exist" failure.
func IsAccountNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.ErrCode == ErrCodeAccountNotExists
}

// redeemMessage maps a redemption err_code to a fixed message, falling back
// to the service message and then a generic one.
func redeemMessage(errCode int, serviceMsg string) string {
	switch errCode {
	case ErrCodeAlreadyClaimed:
		return "gift code already claimed"
	case ErrCodeNotFound:
		return "gift code does not exist"
	case ErrCodeQuotaExceeded:
		return "gift code claim limit reached"
	case ErrCodeExpired:
		return "gift code expired"
	}
	if serviceMsg != "" {
		return serviceMsg
	}
	return "gift code redemption failed"
}
