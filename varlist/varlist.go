package varlist

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfRange indicates an index >= List.Size, or < 0.
	ErrOutOfRange = errors.New(`varlist: index out of range`)

	// ErrTypeMismatch indicates a typed retrieval against a slot holding a
	// value of a different type.
	ErrTypeMismatch = errors.New(`varlist: stored type differs`)

	// ErrEmptySlot indicates a retrieval against a slot cleared via
	// List.Drop.
	ErrEmptySlot = errors.New(`varlist: empty slot`)
)

type (
	// List is an ordered sequence of heterogeneously-typed slots. Each slot
	// owns one value, and remembers its type, rejecting mistyped retrievals.
	//
	// The zero value is ready to use. A List must not be copied after first
	// use; pass it by pointer.
	List struct {
		nodes []node
	}

	// node is a single slot. The data field holds a *T, so that typed
	// retrieval can hand out a mutable reference to the stored value. The
	// dynamic type of data doubles as the slot's type identity.
	node struct {
		data any
	}
)

// Add appends a slot owning value.
//
// Amortized O(1). Size grows by one, and prior indices remain valid.
func Add[T any](x *List, value T) {
	x.nodes = append(x.nodes, node{data: &value})
}

// Emplace appends a slot owning value, returning a mutable reference to the
// newly stored value.
func Emplace[T any](x *List, value T) *T {
	data := &value
	x.nodes = append(x.nodes, node{data: data})
	return data
}

// Get returns a mutable reference to the value stored at index.
//
// An error wrapping [ErrOutOfRange] is returned if index is not a valid
// slot, [ErrEmptySlot] if the slot was cleared via [List.Drop], and an error
// wrapping [ErrTypeMismatch] if the stored type is not T.
func Get[T any](x *List, index int) (*T, error) {
	if index < 0 || index >= len(x.nodes) {
		return nil, fmt.Errorf(`%w: index %d with size %d`, ErrOutOfRange, index, len(x.nodes))
	}
	data := x.nodes[index].data
	if data == nil {
		return nil, ErrEmptySlot
	}
	value, ok := data.(*T)
	if !ok {
		return nil, fmt.Errorf(`%w: slot %d holds %T`, ErrTypeMismatch, index, data)
	}
	return value, nil
}

// Remove deletes the slot at index, shifting all subsequent slots down by
// one. An error wrapping [ErrOutOfRange] is returned if index is not a valid
// slot.
func (x *List) Remove(index int) error {
	if index < 0 || index >= len(x.nodes) {
		return fmt.Errorf(`%w: index %d with size %d`, ErrOutOfRange, index, len(x.nodes))
	}
	copy(x.nodes[index:], x.nodes[index+1:])
	x.nodes[len(x.nodes)-1] = node{}
	x.nodes = x.nodes[:len(x.nodes)-1]
	return nil
}

// Drop clears the slot at index in place, without shifting. Retrievals
// against a dropped slot fail with [ErrEmptySlot], until the slot is removed
// or the list cleared.
func (x *List) Drop(index int) error {
	if index < 0 || index >= len(x.nodes) {
		return fmt.Errorf(`%w: index %d with size %d`, ErrOutOfRange, index, len(x.nodes))
	}
	x.nodes[index] = node{}
	return nil
}

// Clear removes all slots.
func (x *List) Clear() {
	x.nodes = nil
}

// Size returns the number of slots.
func (x *List) Size() int {
	return len(x.nodes)
}

// Empty returns true if the list has no slots.
func (x *List) Empty() bool {
	return len(x.nodes) == 0
}
