package service

import "errors"

// 业务层错误，由 HTTP 层映射为 400/404
var (
	ErrInvalidTimeDimension = errors.New("invalid time dimension, expected week, month or quarter")
	ErrInvalidDealField     = errors.New("invalid deal field, expected deal_status or status")
	ErrInvalidDate          = errors.New("invalid date, expected YYYY-MM-DD")
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrInvalidTimeRange     = errors.New("invalid time range, expected 7d, 30d or 90d")
	ErrInvalidTrendType     = errors.New("invalid trend type, expected inquiry, deal or premium")
	ErrAgentNotFound        = errors.New("agent not found")
	ErrUnderwriterNotFound  = errors.New("underwriter not found")
	ErrNothingToImport      = errors.New("no importable rows")
)

// IsValidationError reports whether err should be surfaced to clients as a bad request.
func IsValidationError(err error) bool {
	for _, target := range []error{
		ErrInvalidTimeDimension,
		ErrInvalidDealField,
		ErrInvalidDate,
		ErrInvalidAmount,
		ErrInvalidTimeRange,
		ErrInvalidTrendType,
		ErrAgentNotFound,
		ErrUnderwriterNotFound,
		ErrNothingToImport,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
