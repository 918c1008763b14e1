// Package ptrutil contains helpers for the optional (pointer) fields used by the options structs in this module.
package ptrutil

// ToPtr returns a pointer to a copy of the provided object.
//
// NOTE: Useful for constants e.g. 'ToPtr(5 * time.Second)', for variables just use the & operator.
func ToPtr[V any](v V) *V {
	return &v
}

// SetPtrIfNil sets the first pointer to the other given pointer if first pointer is nil.
func SetPtrIfNil[V any](p **V, otherP *V) {
	if p == nil || *p != nil {
		return
	}

	*p = otherP
}

// ValueOrDefault dereferences the given pointer, returning the provided default value when it's <nil>.
func ValueOrDefault[V any](p *V, def V) V {
	if p == nil {
		return def
	}

	return *p
}
