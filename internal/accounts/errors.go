package accounts

import "errors"

var (
	ErrInvalidUsername   = errors.New("invalid username")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrBalanceOverflow   = errors.New("balance overflow")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrSelfFriendship    = errors.New("account cannot befriend itself")
	ErrCardAlreadyLinked = errors.New("card already linked")
	ErrInvalidCard       = errors.New("invalid card")
	ErrForeignAccount    = errors.New("account belongs to another book")
	ErrNotInTx           = errors.New("account is not part of the transaction")
)
