package indikit

import "errors"

var (
	ErrNotConnected     = errors.New("device is not connected")
	ErrNotImplemented   = errors.New("operation not implemented")
	ErrPropertyNotFound = errors.New("property not found")
	ErrAlreadyDefined   = errors.New("property already defined")
)
