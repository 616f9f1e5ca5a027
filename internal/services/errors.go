// Package services defines the business logic for conversations, the chat
// streaming relay, journal insights, and mood analysis.
// This file centralizes common service-level error values so that they can be
// consistently returned by service methods and checked by callers.
//
// These errors are intended for internal use by the service layer and translation
// into user-facing messages or HTTP status codes should be performed at the
// handler/controller layer. Store and model failures are not redeclared here;
// they surface as repo.ErrStoreUnavailable and llm.ErrModelUnavailable.
package services

import (
	"errors"
	"fmt"
)

// Conversation-related errors.
var (
	// ErrConversationNotFound indicates that the requested conversation does
	// not exist or is not accessible to the current user.
	ErrConversationNotFound = errors.New("conversation not found")
)

// Input errors. Every one of them wraps ErrInvalidInput.
var (
	// ErrInvalidInput is the umbrella for client mistakes (HTTP 400).
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmptyMessage is returned when a chat message is blank after trimming.
	ErrEmptyMessage = fmt.Errorf("%w: message is empty", ErrInvalidInput)

	// ErrTooLong is returned when a chat message or journal entry exceeds
	// the configured rune limit.
	ErrTooLong = fmt.Errorf("%w: content too long", ErrInvalidInput)

	// ErrInvalidDate is returned for dates not in YYYY-MM-DD form.
	ErrInvalidDate = fmt.Errorf("%w: invalid date format, use YYYY-MM-DD", ErrInvalidInput)

	// ErrDateOrder is returned when the start date is after the end date.
	ErrDateOrder = fmt.Errorf("%w: start date must be before end date", ErrInvalidInput)
)
