// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package pointer handles optional JSON fields.

Editor requests distinguish "absent" from zero (a resize of width 0 means
"derive from the height", a missing quality means "use the configured
default"), so those fields decode into pointers.
*/
package pointer

// To returns a pointer to a copy of v.
func To[T any](v T) *T {
	return &v
}

// Val dereferences p, or returns the zero value when p is nil.
func Val[T any](p *T) T {
	var zero T
	return Fallback(p, zero)
}

// Fallback dereferences p, or returns fallback when p is nil.
func Fallback[T any](p *T, fallback T) T {
	if p == nil {
		return fallback
	}
	return *p
}

// Absent reports whether every pointer is nil.
func Absent[T any](ps ...*T) bool {
	for _, p := range ps {
		if p != nil {
			return false
		}
	}
	return true
}
