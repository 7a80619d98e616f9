// File: internal/services/chat/errors.go
package chat

import (
	"errors"
	"fmt"
)

type ErrorType string

const (
	ErrTypeValidation  ErrorType = "VALIDATION"
	ErrTypeNotFound    ErrorType = "NOT_FOUND"
	ErrTypeForbidden   ErrorType = "FORBIDDEN"
	ErrTypeTransaction ErrorType = "TRANSACTION"
)

type ChatError struct {
	Type      ErrorType
	Operation string
	Message   string
	ChatID    string
	UserID    string
	Cause     error
}

func (e *ChatError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("chat %s error in %s: %s (caused by: %v)",
			e.Type, e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("chat %s error in %s: %s", e.Type, e.Operation, e.Message)
}

func (e *ChatError) Unwrap() error { return e.Cause }

func NewValidationError(operation, msg string) *ChatError {
	return &ChatError{Type: ErrTypeValidation, Operation: operation, Message: msg}
}

func NewNotFoundError(chatID string) *ChatError {
	return &ChatError{
		Type:      ErrTypeNotFound,
		Operation: "authorization",
		Message:   "chat not found",
		ChatID:    chatID,
	}
}

func NewForbiddenError(userID, chatID string) *ChatError {
	return &ChatError{
		Type:      ErrTypeForbidden,
		Operation: "authorization",
		Message:   "caller does not own this chat",
		ChatID:    chatID,
		UserID:    userID,
	}
}

func NewTransactionError(operation, msg string, cause error) *ChatError {
	return &ChatError{Type: ErrTypeTransaction, Operation: operation, Message: msg, Cause: cause}
}

func typeOf(err error) (ErrorType, bool) {
	var ce *ChatError
	if errors.As(err, &ce) {
		return ce.Type, true
	}
	return "", false
}

func IsValidation(err error) bool { t, ok := typeOf(err); return ok && t == ErrTypeValidation }
func IsNotFound(err error) bool   { t, ok := typeOf(err); return ok && t == ErrTypeNotFound }
func IsForbidden(err error) bool  { t, ok := typeOf(err); return ok && t == ErrTypeForbidden }
