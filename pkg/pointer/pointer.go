// Copyright (c) 2026 Comicbox. All rights reserved.
// Author: huy.ndq.dev@gmail.com

/*
Package pointer provides utilities for working with pointers in Go.

It leverages generics to simplify the creation and dereferencing of pointers,
avoiding boilerplate in handler and service code.

Key Functions:
  - To: Creates a pointer from a value literal.
  - Val: Safely dereferences a pointer, returning the zero value if nil.
  - Fallback: Safely dereferences a pointer, returning a fallback value if nil.
*/
package pointer

// To returns a pointer to the provided value.
// It is useful when passing a primitive literal to a struct field that
// expects a pointer (e.g. pointer.To("something")).
func To[T any](v T) *T {
	return &v
}

// Val dereferences the pointer, returning the zero value of T when nil.
func Val[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}

// Fallback dereferences the pointer, returning the provided fallback when nil.
func Fallback[T any](p *T, fallback T) T {
	if p == nil {
		return fallback
	}
	return *p
}
