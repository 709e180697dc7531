// Package model holds the domain entities.
//
// Entities here are plain structs with no persistence or transport
// concerns; mapping to rows and JSON lives in the repository and handler
// layers.
package model
