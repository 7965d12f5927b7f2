package bank

import "errors"

var (
	// ErrRegistryFull indicates all handler slots are occupied.
	ErrRegistryFull = errors.New("handler registry full")
	// ErrHandlerRegistered indicates the handler is already registered.
	ErrHandlerRegistered = errors.New("handler already registered")
	// ErrNilHandler indicates an attempt to register a nil handler.
	ErrNilHandler = errors.New("nil handler")
)
