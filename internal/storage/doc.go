// Package storage defines the key-value storage interface backing each zone
// of the overlay, along with an in-memory implementation.
//
// # Overview
//
// Every zone in the overlay owns exactly one Store holding the key/value
// pairs whose hash-derived points fall inside the zone's rectangle. The
// engine moves entries between stores when rectangles change (splits and
// merges); the store itself knows nothing about coordinates or ownership.
//
// # Core Interface
//
// Store: Basic key-value storage operations
//   - Get(key) - Retrieve a value by key
//   - Put(key, value) - Store or update a key-value pair
//   - Delete(key) - Remove a key-value pair
//   - Keys() - List all keys in the store
//   - Len() - Count stored keys
//
// # Implementations
//
// MemoryStore: In-memory storage with sync.RWMutex
//   - Fast operations (nanosecond latency)
//   - No persistence (data lost on restart)
//   - The only backend the simulator needs
//
// The overlay engine mutates stores from a single writer, so the mutex
// exists for concurrent readers (stats, rendering) rather than for write
// contention.
//
// # Error Handling
//
// Get returns ErrKeyNotFound for missing keys; this is the distinguished
// absence value surfaced by the engine's Get operation. Delete is idempotent
// and never fails.
package storage
