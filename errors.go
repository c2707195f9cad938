/*
 * errors.go, part of goScatter.
 *
 * Copyright 2026 The goScatter authors
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package scatter

import (
	"errors"
	"fmt"
	"strings"
)

//Errors

// Error kinds. Every *Error unwraps to one of these, so callers can use errors.Is.
var (
	ErrInvalidMolecule   = errors.New("invalid molecule")
	ErrInvalidConfig     = errors.New("invalid configuration")
	ErrShapeMismatch     = errors.New("shape mismatch")
	ErrInconsistentKeys  = errors.New("inconsistent coefficient keys")
	ErrDimensionMismatch = errors.New("dimension mismatch")
)

// Error is the error type that all packages in this library return for the failures
// they detect themselves. The Decorate method allows to add and retrieve info from the
// error, without changing its type or wrapping it around something else.
// The decoration slice should contain a list of functions in the calling stack, plus, for each
// function any relevant information, or nothing, in the format "FunctionName: Extra info".
type Error struct {
	message  string
	kind     error
	deco     []string
	critical bool
}

// Error returns a string with an error message, followed by the decoration, if any.
func (err *Error) Error() string {
	if len(err.deco) == 0 {
		return fmt.Sprintf("%v: %s", err.kind, err.message)
	}
	return fmt.Sprintf("%v: %s (%s)", err.kind, err.message, strings.Join(err.deco, " <- "))
}

// Unwrap returns the kind of the error.
func (err *Error) Unwrap() error { return err.kind }

// Decorate will add the dec string to the decoration slice of strings of the error,
// and return the resulting slice. If passed an empty string, it just returns the
// current value.
func (err *Error) Decorate(dec string) []string {
	if dec == "" {
		return err.deco
	}
	err.deco = append(err.deco, dec)
	return err.deco
}

// Critical returns whether the error is critical or it can be ignored.
func (err *Error) Critical() bool { return err.critical }

// Message returns the error message without the kind or decoration.
func (err *Error) Message() string { return err.message }

func newError(kind error, critical bool, format string, args ...interface{}) *Error {
	return &Error{message: fmt.Sprintf(format, args...), kind: kind, critical: critical}
}

// InvalidMoleculeError reports a molecule that cannot be encoded.
func InvalidMoleculeError(format string, args ...interface{}) *Error {
	return newError(ErrInvalidMolecule, false, format, args...)
}

// InvalidConfigError reports a bad parameter. These are always critical.
func InvalidConfigError(format string, args ...interface{}) *Error {
	return newError(ErrInvalidConfig, true, format, args...)
}

// ShapeMismatchError reports a field whose shape does not match what a stage expects.
func ShapeMismatchError(format string, args ...interface{}) *Error {
	return newError(ErrShapeMismatch, true, format, args...)
}

// InconsistentKeysError reports a coefficient tensor whose keys differ from the reference.
func InconsistentKeysError(format string, args ...interface{}) *Error {
	return newError(ErrInconsistentKeys, true, format, args...)
}

// DimensionMismatchError reports feature matrices or targets of the wrong size.
func DimensionMismatchError(format string, args ...interface{}) *Error {
	return newError(ErrDimensionMismatch, false, format, args...)
}

// DecorateError decorates err with caller if err is an *Error, and returns it.
// Other errors are wrapped with caller as prefix.
func DecorateError(err error, caller string) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		e.Decorate(caller)
		return err
	}
	return fmt.Errorf("%s: %w", caller, err)
}
