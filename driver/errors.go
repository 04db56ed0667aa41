package driver

import (
	"errors"
	"fmt"
)

// Code is the device error taxonomy. Every failure a backend reports maps to
// exactly one code; the wrapper propagates codes untouched and leaves the
// decision which ones are ignorable to the caller.
type Code int32

const (
	CodeOK Code = iota
	CodeInvalidHandle
	CodeTimeout
	CodeInvalidArg
	CodeOutOfRange
	CodeUnknownParam
	CodeWrongParamType
	CodeReadOnly
	CodeNotSupported
	CodeNotImplemented
	CodeAcquisitionActive
	CodeAcquisitionStopped
	CodeDeviceBusy
	CodeDeviceLost
	CodeInternal
)

// String returns a short description for logs and error text.
func (c Code) String() string {
	switch c {
	case CodeOK:
		return "ok"
	case CodeInvalidHandle:
		return "invalid handle"
	case CodeTimeout:
		return "timeout"
	case CodeInvalidArg:
		return "invalid argument"
	case CodeOutOfRange:
		return "value out of range"
	case CodeUnknownParam:
		return "unknown parameter"
	case CodeWrongParamType:
		return "wrong parameter type"
	case CodeReadOnly:
		return "parameter is read-only"
	case CodeNotSupported:
		return "not supported"
	case CodeNotImplemented:
		return "not implemented"
	case CodeAcquisitionActive:
		return "acquisition is active"
	case CodeAcquisitionStopped:
		return "acquisition is stopped"
	case CodeDeviceBusy:
		return "device busy"
	case CodeDeviceLost:
		return "device lost"
	case CodeInternal:
		return "internal error"
	default:
		return fmt.Sprintf("code(%d)", int32(c))
	}
}

// Error is the single error type crossing the driver boundary. Op names the
// failed operation ("open", "set_param", "get_image"), Param the parameter
// key when the operation addresses one.
type Error struct {
	Code  Code
	Op    string
	Param string
}

func (e *Error) Error() string {
	if e.Param != "" {
		return fmt.Sprintf("driver: %s %q: %s", e.Op, e.Param, e.Code)
	}
	return fmt.Sprintf("driver: %s: %s", e.Op, e.Code)
}

// NewError builds a driver error for an operation without a parameter.
func NewError(code Code, op string) *Error {
	return &Error{Code: code, Op: op}
}

// NewParamError builds a driver error for a parameter access.
func NewParamError(code Code, op, param string) *Error {
	return &Error{Code: code, Op: op, Param: param}
}

// CodeOf extracts the device code from err, unwrapping as needed. A nil err
// yields CodeOK; an error that did not originate at the driver boundary
// yields CodeInternal.
func CodeOf(err error) Code {
	if err == nil {
		return CodeOK
	}
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// IsTimeout reports whether err is a frame-wait expiry.
func IsTimeout(err error) bool {
	return CodeOf(err) == CodeTimeout
}

// IsNotSupported reports whether the device rejected the operation as
// unsupported on this model.
func IsNotSupported(err error) bool {
	return CodeOf(err) == CodeNotSupported
}

// IsNotImplemented reports whether the backend does not implement the
// operation at all.
func IsNotImplemented(err error) bool {
	return CodeOf(err) == CodeNotImplemented
}
