/*
SPDX-License-Identifier: Apache-2.0
*/

package main

import "errors"

// Failure taxonomy. Every operation fails with exactly one of these so
// callers can branch with errors.Is instead of matching message text.
var (
	// ErrNotFound is returned when a record id is unknown.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized is returned when the caller lacks the required
	// capability or is not the record owner.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidInput is returned for zero or malformed parameters.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidState is returned when a record exists but its state forbids
	// the operation (inactive unit, already confirmed, inactive program).
	ErrInvalidState = errors.New("invalid state")
	// ErrInsufficientBudget is returned when a settlement exceeds the
	// remaining budget of an incentive program.
	ErrInsufficientBudget = errors.New("insufficient budget")
	// ErrOverflow is returned when reward arithmetic would exceed the
	// numeric range instead of wrapping.
	ErrOverflow = errors.New("arithmetic overflow")
)
