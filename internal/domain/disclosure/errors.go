package disclosure

import "errors"

var (
	ErrUnknownSourceType      = errors.New("unknown source type")
	ErrUnknownTraderKind      = errors.New("unknown trader kind")
	ErrUnknownTransactionType = errors.New("unknown transaction type")

	ErrMissingTrader          = errors.New("trade requires a trader")
	ErrMissingTicker          = errors.New("trade requires a ticker symbol")
	ErrMissingTransactionDate = errors.New("trade requires a transaction date")

	ErrNegativeEstimatedValue  = errors.New("estimated value must not be negative")
	ErrNegativeQuantity        = errors.New("quantity must not be negative")
	ErrFilingBeforeTransaction = errors.New("filing date precedes transaction date")

	ErrInvalidDistrictField = errors.New("invalid district field")
)
