package buyback

import "errors"

var (
	ErrInvalidPrice             = errors.New("buyback: invalid price")
	ErrInsufficientPriceHistory = errors.New("buyback: insufficient price history")
	ErrAllocationTooSoon        = errors.New("buyback: allocation cooldown active")
)
