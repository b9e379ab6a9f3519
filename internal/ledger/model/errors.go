package model

import "errors"

var (
	ErrInvalidPeriod      = errors.New("invalid period")
	ErrUnknownCurrency    = errors.New("unknown currency")
	ErrUnknownCategory    = errors.New("unknown category")
	ErrDataIntegrity      = errors.New("data integrity violation")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidTransaction = errors.New("invalid transaction")
)
