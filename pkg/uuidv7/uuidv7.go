// Copyright (c) 2026 Comicbox. All rights reserved.
// Author: huy.ndq.dev@gmail.com

// Package uuidv7 wraps google/uuid to generate time-ordered UUIDv7 values.
//
// # Why UUIDv7?
//
// It is the primary key type for every Comicbox table. Being time-sortable,
// it keeps B-tree indexes append-friendly in PostgreSQL, avoiding the index
// fragmentation caused by random UUIDv4 keys.
package uuidv7

import "github.com/google/uuid"

// New generates a new UUIDv7 string.
//
// # Safety
//
// It panics only if the OS random source is unavailable (extremely rare).
// OS entropy failure is an unrecoverable system-level condition.
func New() string {
	id, err := uuid.NewV7()
	if err != nil {
		panic("uuidv7: failed to generate UUID: " + err.Error())
	}

	return id.String()
}

// IsValid reports whether the given string parses as any UUID version.
//
// Handlers use it to reject malformed path identifiers before the storage
// layer ever sees them.
func IsValid(value string) bool {
	_, err := uuid.Parse(value)
	return err == nil
}
