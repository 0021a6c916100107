package errors

import "errors"

var (
	ErrNotFound = errors.New("appointment not found")

	ErrInvalidID = errors.New("invalid appointment ID format")

	ErrSlotTaken = errors.New("slot is already being booked")

	ErrAlreadyCancelled = errors.New("appointment is already cancelled")
)
