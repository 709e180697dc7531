// Package service holds the post use cases. Handlers call it with input
// that has already been bound and validated; it applies business rules,
// dispatches commands and reads through the repositories.
package service
