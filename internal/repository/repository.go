// Package repository handles all interactions with storage.
//
// It contains the SQL for posts, an in-memory store used by tests, and a
// Redis read-through cache that can wrap either of them.
package repository
