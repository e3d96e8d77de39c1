package service

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrTableOccupied   = errors.New("table already occupied")
	ErrOrderNotActive  = errors.New("order is not active")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrInvalidPayment  = errors.New("invalid payment input")
	ErrPaymentMismatch = errors.New("payment total does not match order total")
)
