package bank

import "github.com/biorob/remregs/pkg/regs"

// MaxHandlers is the registry capacity.
const MaxHandlers = 16

// Registry is an ordered, fixed-capacity collection of register
// handlers. Registration order determines read dispatch priority.
// The zero value is ready to use.
//
// The registry holds non-owning references: removal only clears the
// slot.
type Registry struct {
	slots [MaxHandlers]Handler
}

// Register inserts h into the first empty slot. Handlers are matched
// by identity; register a pointer or a HandlerFunc. A handler of a
// non-comparable value kind (a by-value struct holding a slice or
// map) has no identity: duplicates go undetected and Unregister never
// finds it.
func (r *Registry) Register(h Handler) error {
	if h == nil {
		return ErrNilHandler
	}
	free := -1
	for i, s := range r.slots {
		if s == nil {
			if free < 0 {
				free = i
			}
			continue
		}
		if handlerEqual(s, h) {
			return ErrHandlerRegistered
		}
	}
	if free < 0 {
		return ErrRegistryFull
	}
	r.slots[free] = h
	return nil
}

// Unregister removes the first slot matching h by identity and reports
// whether a slot was cleared.
func (r *Registry) Unregister(h Handler) bool {
	if h == nil {
		return false
	}
	for i, s := range r.slots {
		if s != nil && handlerEqual(s, h) {
			r.slots[i] = nil
			return true
		}
	}
	return false
}

// Len counts the occupied slots.
func (r *Registry) Len() int {
	n := 0
	for _, s := range r.slots {
		if s != nil {
			n++
		}
	}
	return n
}

// Broadcast invokes every occupied slot in registration order,
// ignoring return values. Used for write operations.
func (r *Registry) Broadcast(op regs.Operation, addr uint16, data *regs.RegisterData) {
	for _, s := range r.slots {
		if s != nil {
			s.HandleRegister(op, addr, data)
		}
	}
}

// FirstMatch invokes occupied slots in registration order until one
// returns true, and reports whether any did. Used for read operations.
func (r *Registry) FirstMatch(op regs.Operation, addr uint16, data *regs.RegisterData) bool {
	for _, s := range r.slots {
		if s != nil && s.HandleRegister(op, addr, data) {
			return true
		}
	}
	return false
}
