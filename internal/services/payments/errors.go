package payments

import "errors"

var (
	ErrSelfPayment         = errors.New("account cannot pay itself")
	ErrNonPositiveAmount   = errors.New("amount must be positive")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrNoCardLinked        = errors.New("no card linked")
	ErrCardDeclined        = errors.New("card declined")
)
