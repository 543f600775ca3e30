// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package gateway

import (
	"errors"
	"fmt"
)

// Error codes surfaced to callers.
const (
	CodeUnsupportedChain uint16 = iota + 1
	CodeAlreadyExecuted
	CodeInvalidReceiver
	CodeMissingKey
	CodeInvalidSignature
	CodeDispatchFailed
)

var (
	ErrUnsupportedChain = &Error{Code: CodeUnsupportedChain, Message: "unsupported chain"}
	ErrAlreadyExecuted  = &Error{Code: CodeAlreadyExecuted, Message: "message already executed"}
	ErrInvalidReceiver  = &Error{Code: CodeInvalidReceiver, Message: "invalid receiver"}
	ErrMissingKey       = &Error{Code: CodeMissingKey, Message: "missing key"}
	ErrInvalidSignature = &Error{Code: CodeInvalidSignature, Message: "invalid signature"}
	// ErrDispatchFailed wraps a recipient failure. The message stays
	// executed, so resubmitting it can only return ErrAlreadyExecuted.
	ErrDispatchFailed   = &Error{Code: CodeDispatchFailed, Message: "dispatch failed"}
)

// Error represents a gateway error
type Error struct {
	Code    uint16
	Message string
}

// Error implements the error interface
func (e *Error) Error() string {
	return fmt.Sprintf("gateway error %d: %s", e.Code, e.Message)
}

// ErrorCode extracts the code of the gateway error wrapped by err.
func ErrorCode(err error) (uint16, bool) {
	var gerr *Error
	if errors.As(err, &gerr) {
		return gerr.Code, true
	}
	return 0, false
}

// ErrorForCode returns the sentinel carrying code.
func ErrorForCode(code uint16) (*Error, bool) {
	switch code {
	case CodeUnsupportedChain:
		return ErrUnsupportedChain, true
	case CodeAlreadyExecuted:
		return ErrAlreadyExecuted, true
	case CodeInvalidReceiver:
		return ErrInvalidReceiver, true
	case CodeMissingKey:
		return ErrMissingKey, true
	case CodeInvalidSignature:
		return ErrInvalidSignature, true
	case CodeDispatchFailed:
		return ErrDispatchFailed, true
	default:
		return nil, false
	}
}
