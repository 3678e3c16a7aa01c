package handlers

import "errors"

var (
	ErrMessageIsNil   = errors.New("message is nil")
	ErrEmptyMessage   = errors.New("message is empty")
	ErrInvalidMessage = errors.New("message is invalid")
	ErrOwnMessage     = errors.New("message was published by this service")
)
