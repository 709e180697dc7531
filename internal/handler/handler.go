// Package handler is the HTTP layer. Handlers bind and validate requests,
// call the services and shape the JSON responses; errors are left to the
// global error handler.
package handler
