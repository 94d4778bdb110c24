package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeSchema   ErrorType = "SCHEMA"
	ErrTypeFetch    ErrorType = "FETCH"
	ErrTypeUniverse ErrorType = "UNIVERSE"
	ErrTypePublish  ErrorType = "PUBLISH"
	ErrTypeNetwork  ErrorType = "NETWORK"
	ErrTypeParsing  ErrorType = "PARSING"
	ErrTypeStorage  ErrorType = "STORAGE"
	ErrTypeConfig   ErrorType = "CONFIG"
)

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// NewNetworkError creates a network-related error
func NewNetworkError(message string, cause error) *AppError {
	return NewAppError(ErrTypeNetwork, message, cause)
}

// NewParsingError creates a parsing-related error
func NewParsingError(message string, cause error) *AppError {
	return NewAppError(ErrTypeParsing, message, cause)
}

// NewStorageError creates a storage-related error
func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// Fataler is implemented by errors that know whether they abort a run.
type Fataler interface {
	Fatal() bool
}

// IsFatal reports whether err must abort the run. Errors that do not
// classify themselves are treated as fatal.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	var f Fataler
	if errors.As(err, &f) {
		return f.Fatal()
	}
	return true
}

// TypeOf returns the ErrorType of the first typed error in the chain.
func TypeOf(err error) ErrorType {
	var typed interface{ ErrorType() ErrorType }
	if errors.As(err, &typed) {
		return typed.ErrorType()
	}
	var app *AppError
	if errors.As(err, &app) {
		return app.Type
	}
	return ""
}
