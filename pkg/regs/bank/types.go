package bank

import (
	"reflect"

	"github.com/biorob/remregs/pkg/regs"
)

// Handler handles register operations.
//
// For read operations the handler populates data (including the size
// for regs.OpReadMB) and returns true to claim the request; dispatch
// stops at the first handler returning true. For write operations
// data carries the received payload and the return value is ignored.
//
// Handlers must not retain data beyond the call.
type Handler interface {
	HandleRegister(op regs.Operation, addr uint16, data *regs.RegisterData) bool
}

// HandlerFunc is func type of Handler.
//
// Identity of a HandlerFunc is its code pointer: values created from
// the same function (or the same closure literal) unregister each
// other. Register a distinct type implementing Handler when per-value
// identity matters.
type HandlerFunc func(op regs.Operation, addr uint16, data *regs.RegisterData) bool

// HandleRegister implements Handler.
func (f HandlerFunc) HandleRegister(op regs.Operation, addr uint16, data *regs.RegisterData) bool {
	return f(op, addr, data)
}

// handlerEqual matches handlers by identity. Comparable dynamic types
// (pointers, structs of comparables) compare directly; funcs and other
// reference kinds compare by pointer. Non-comparable value kinds (e.g.
// a struct holding a slice, registered by value) have no identity and
// never match.
func handlerEqual(a, b Handler) bool {
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	if ta.Comparable() {
		return a == b
	}
	switch ta.Kind() {
	case reflect.Ptr, reflect.Func, reflect.Map, reflect.Slice, reflect.Chan:
		return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
	}
	return false
}
