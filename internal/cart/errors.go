package cart

import "errors"

var (
	ErrInvalidQuantity = errors.New("invalid quantity")
	ErrUnknownProduct  = errors.New("unknown product")
	ErrInvalidPrice    = errors.New("invalid unit price")
)
