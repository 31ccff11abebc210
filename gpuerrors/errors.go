// This file is part of scanline.
//
// scanline is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// scanline is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with scanline.  If not, see <https://www.gnu.org/licenses/>.

package gpuerrors

import "fmt"

// Errno identifies the kind of a GPUError.
type Errno int

// Values holds the format arguments for a GPUError.
type Values []interface{}

// GPUError is the error type used throughout the GPU worker subsystem.
type GPUError struct {
	Errno  Errno
	Values Values
	cause  error
}

// New creates a GPUError of the given kind with no wrapped cause. Use Wrap
// to attach a cause.
func New(errno Errno, values ...interface{}) *GPUError {
	return &GPUError{Errno: errno, Values: values}
}

// Wrap creates a GPUError of the given kind that wraps cause, unless cause
// is already a GPUError of the same kind, in which case cause is returned
// as-is.
func Wrap(errno Errno, cause error, values ...interface{}) error {
	if cause == nil {
		return nil
	}
	if ge, ok := cause.(*GPUError); ok && ge.Errno == errno {
		return ge
	}
	return &GPUError{Errno: errno, Values: values, cause: cause}
}

// Error implements the error interface.
func (e *GPUError) Error() string {
	msg, ok := messages[e.Errno]
	if !ok {
		msg = "unknown GPU error"
	}
	s := fmt.Sprintf(msg, e.Values...)
	if e.cause != nil {
		s = fmt.Sprintf("%s: %s", s, e.cause.Error())
	}
	return s
}

// Unwrap allows errors.Is / errors.As to see through a GPUError to its cause.
func (e *GPUError) Unwrap() error {
	return e.cause
}

// Is reports whether target is a GPUError of the same Errno, so that
// errors.Is(err, gpuerrors.New(gpuerrors.DeviceLost)) works without caring
// about the wrapped Values.
func (e *GPUError) Is(target error) bool {
	t, ok := target.(*GPUError)
	if !ok {
		return false
	}
	return t.Errno == e.Errno
}
