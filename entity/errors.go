package entity

import "errors"

var (
	ErrValidation  = errors.New("validation error")
	ErrTooLarge    = errors.New("file too large")
	ErrNotFound    = errors.New("object not found")
	ErrStorage     = errors.New("storage error")
	ErrPersistence = errors.New("persistence error")
)
