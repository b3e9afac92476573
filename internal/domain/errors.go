package domain

import "errors"

var (
	// ErrNotFound indicates resource not found
	ErrNotFound = errors.New("resource not found")
	// ErrInvalidInput indicates a request rejected by validation
	ErrInvalidInput = errors.New("invalid input")
	// ErrDuplicate indicates the resource already exists
	ErrDuplicate = errors.New("resource already exists")
	// ErrConflict indicates a conflicting in-flight operation
	ErrConflict = errors.New("conflicting operation in progress")
)
