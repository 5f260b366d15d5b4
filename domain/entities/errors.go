package entities

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrTimeout - an element did not reach the required state within its wait budget
	ErrTimeout = errors.New("timeout")
	// ErrAssertion - observed state did not match the expectation
	ErrAssertion = errors.New("assertion failed")
	// ErrInteraction - the engine failed to query, click or fill an element
	ErrInteraction = errors.New("interaction failed")
	// ErrUnknownLocatorKey - a page model was asked for a key it does not define
	ErrUnknownLocatorKey = errors.New("unknown locator key")
)

// TimeoutError is returned when a wait exceeds its budget
type TimeoutError struct {
	Selector string
	State    string
	Timeout  time.Duration
	Err      error
}

func (e *TimeoutError) Error() string {
	msg := fmt.Sprintf("timeout %s waiting for %s to be %s", e.Timeout, e.Selector, e.State)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *TimeoutError) Unwrap() error { return e.Err }

func (e *TimeoutError) Is(target error) bool { return target == ErrTimeout }

// AssertionError is returned when element text does not match
type AssertionError struct {
	Selector string
	Expected string
	Actual   string
	Contains bool
}

func (e *AssertionError) Error() string {
	verb := "to equal"
	if e.Contains {
		verb = "to contain"
	}
	return fmt.Sprintf("expected text of %s %s %q, got %q", e.Selector, verb, e.Expected, e.Actual)
}

func (e *AssertionError) Is(target error) bool { return target == ErrAssertion }

// InteractionError wraps an engine failure for a single operation
type InteractionError struct {
	Op       string
	Selector string
	Err      error
}

func (e *InteractionError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Selector, e.Err)
}

func (e *InteractionError) Unwrap() error { return e.Err }

func (e *InteractionError) Is(target error) bool { return target == ErrInteraction }

// UnknownLocatorKeyError is returned by page models for undefined keys
type UnknownLocatorKeyError struct {
	Page string
	Key  string
}

func (e *UnknownLocatorKeyError) Error() string {
	return fmt.Sprintf("unknown locator key %q on page %s", e.Key, e.Page)
}

func (e *UnknownLocatorKeyError) Is(target error) bool { return target == ErrUnknownLocatorKey }
