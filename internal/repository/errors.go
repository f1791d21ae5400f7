package repository

import "errors"

var (
	// ErrNotFound is returned when a requested key or entry doesn't exist
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput is returned when a backend is called with an unusable key or value
	ErrInvalidInput = errors.New("invalid input")

	// ErrClosed is returned when a backend is used after Close
	ErrClosed = errors.New("store closed")
)
