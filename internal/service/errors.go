package service

import "errors"

var (
	ErrItemNotFound        = errors.New("item not found")
	ErrDuplicateItemCode   = errors.New("item code already exists")
	ErrInsufficientStock   = errors.New("insufficient stock")
	ErrInvalidQuantity     = errors.New("quantity must be positive")
	ErrInvalidMovementKind = errors.New("invalid movement kind")
	ErrFutureDate          = errors.New("date is in the future")
	ErrInvalidDateRange    = errors.New("invalid date range")
	ErrPeriodClosed        = errors.New("stock ledger is closed for that date")

	ErrSaleNotFound         = errors.New("sale not found")
	ErrSaleAlreadyPaid      = errors.New("sale is already paid")
	ErrSaleVoided           = errors.New("sale is void")
	ErrOverpayment          = errors.New("payment exceeds remaining balance")
	ErrInvalidDownPayment   = errors.New("down payment must be between zero and the total")
	ErrInvalidPayment       = errors.New("payment amount must be positive")
	ErrEmptySale            = errors.New("sale has no items")
	ErrCategoryMismatch     = errors.New("item category does not match the sale type")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")

	ErrInvalidGrade      = errors.New("invalid condition grade")
	ErrNoGoldPrice       = errors.New("no gold price for purity")
	ErrInvalidPercentage = errors.New("percentage must be greater than 0 and at most 100")
	ErrInvalidWeight     = errors.New("weight must be positive")
	ErrGoldFeedDisabled  = errors.New("gold price feed is not configured")

	ErrPurgeNotPast      = errors.New("purge cut-off must be before today")
	ErrUnsupportedFormat = errors.New("unsupported export format")
	ErrNoArchiveSink     = errors.New("no archive sink configured")

	ErrSlideNotFound = errors.New("promo slide not found")
)
