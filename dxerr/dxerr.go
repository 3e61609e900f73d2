// Package dxerr defines the typed error taxonomy used throughout the
// recording, packing and replay pipeline so callers can distinguish
// transient device conditions from fatal parse or logic failures.
package dxerr

import "fmt"

// ProcessError is returned when an external process (the log-tail
// subprocess, the shell-of-a-device bridge) exits non-zero while the core
// is reading from it.
type ProcessError struct {
	Code   int
	Stderr string
}

func (e *ProcessError) Error() string {
	return fmt.Sprintf("process exited with code %d: %s", e.Code, e.Stderr)
}

func NewProcessError(code int, stderr string) *ProcessError {
	return &ProcessError{Code: code, Stderr: stderr}
}

// DeviceCommandError is returned when an input or select command returns a
// nonzero code that isn't one of the retryable transient codes.
type DeviceCommandError struct {
	Command string
	Code    int
}

func (e *DeviceCommandError) Error() string {
	return fmt.Sprintf("device command %q failed with code %d", e.Command, e.Code)
}

func NewDeviceCommandError(command string, code int) *DeviceCommandError {
	return &DeviceCommandError{Command: command, Code: code}
}

// NoSuchViewError is returned when a selector-based lookup comes back empty
// (input.view code 5).
type NoSuchViewError struct {
	Selector string
}

func (e *NoSuchViewError) Error() string {
	return fmt.Sprintf("no such view: %s", e.Selector)
}

func NewNoSuchViewError(selector string) *NoSuchViewError {
	return &NoSuchViewError{Selector: selector}
}

// IllegalStateError signals a parser or unpacker state violation: an
// activity-end that doesn't match the activity in progress, a depth jump
// greater than one, an event encountered before any activity was opened, a
// decor view expected but not seen, or an unknown event type.
type IllegalStateError struct {
	Reason string
}

func (e *IllegalStateError) Error() string {
	return "illegal state: " + e.Reason
}

func NewIllegalStateError(reason string) *IllegalStateError {
	return &IllegalStateError{Reason: reason}
}

// NotImplementedError marks a documented extension point that has no
// implementation yet: the UI-segmentation fallback in Res, swipes in Res
// mode, and double-tap at the pixel layer on platforms that never
// implemented it.
type NotImplementedError struct {
	What string
}

func (e *NotImplementedError) Error() string {
	return "not implemented: " + e.What
}

func NewNotImplementedError(what string) *NotImplementedError {
	return &NotImplementedError{What: what}
}

// CannotReachHereError signals a broken invariant: a switch over a closed
// tagged union hit a branch that should be unreachable. Callers return it
// like any other error; it is not meant to be handled, only propagated.
type CannotReachHereError struct {
	Where string
}

func (e *CannotReachHereError) Error() string {
	return "cannot reach here: " + e.Where
}

func NewCannotReachHereError(where string) *CannotReachHereError {
	return &CannotReachHereError{Where: where}
}

// ParseError is a fatal DXPK/trace parse failure: malformed section order,
// a truncated event, an unknown kind letter, or an unknown event type.
type ParseError struct {
	Line   int
	Reason string
	Cause  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse error at line %d: %s", e.Line, e.Reason)
	}
	return fmt.Sprintf("parse error: %s", e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Cause }

func NewParseError(line int, reason string) *ParseError {
	return &ParseError{Line: line, Reason: reason}
}

func WrapParseError(line int, reason string, cause error) *ParseError {
	return &ParseError{Line: line, Reason: reason, Cause: cause}
}
