package emission

import "errors"

var (
	ErrInvalidAmount      = errors.New("emission: invalid amount")
	ErrExceedsEmissionCap = errors.New("emission: windowed cap exceeded")
	ErrExceedsMaxSupply   = errors.New("emission: max supply exceeded")
	ErrAdjustmentTooSoon  = errors.New("emission: adjustment interval active")
)
