package errs

import "errors"

var ErrNotFound = errors.New("not found")

var ErrDuplicate = errors.New("already exists")

var ErrInvalidCredentials = errors.New("invalid username and/or password")

var ErrInsufficientFunds = errors.New("insufficient funds")

var ErrInsufficientShares = errors.New("not enough shares in portfolio")

var ErrUnknownSymbol = errors.New("symbol not found")
