package services

import "net/http"

// ServiceError is a typed error carrying the HTTP status a controller
// should respond with. Domain-rule violations map to 4xx and are surfaced
// as user-facing messages; they are never fatal.
type ServiceError struct {
	StatusCode int
	Message    string
}

func (e *ServiceError) Error() string {
	return e.Message
}

// Domain-rule violations.
var (
	ErrEmptyCart = &ServiceError{
		StatusCode: http.StatusBadRequest,
		Message:    "Your cart is empty",
	}
	ErrOutOfStock = &ServiceError{
		StatusCode: http.StatusBadRequest,
		Message:    "This book is currently out of stock",
	}
	ErrDuplicateReview = &ServiceError{
		StatusCode: http.StatusConflict,
		Message:    "You have already reviewed this book",
	}
	ErrAlreadyInProgress = &ServiceError{
		StatusCode: http.StatusConflict,
		Message:    "A payment for this order is already in progress",
	}
)

func notFound(msg string) *ServiceError {
	return &ServiceError{StatusCode: http.StatusNotFound, Message: msg}
}

func badRequest(msg string) *ServiceError {
	return &ServiceError{StatusCode: http.StatusBadRequest, Message: msg}
}

func forbidden(msg string) *ServiceError {
	return &ServiceError{StatusCode: http.StatusForbidden, Message: msg}
}

func internal(msg string) *ServiceError {
	return &ServiceError{StatusCode: http.StatusInternalServerError, Message: msg}
}
