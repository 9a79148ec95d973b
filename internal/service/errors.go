package service

import "errors"

var (
	// ErrInvalidInput marks business-rule violations in request data.
	// Handlers translate it to a 400 response.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInsufficientStock is returned when a sale or exit movement would
	// drive the on-hand quantity below zero.
	ErrInsufficientStock = errors.New("insufficient stock")

	ErrInvalidCredentials = errors.New("invalid email or password")
)
