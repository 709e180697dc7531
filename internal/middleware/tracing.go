package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/integrations/nrecho-v4"
	"github.com/newrelic/go-agent/v3/integrations/nrpkgerrors"
	"github.com/newrelic/go-agent/v3/newrelic"

	"github.com/deppfellow/post-api/internal/errs"
	"github.com/deppfellow/post-api/internal/server"
	"github.com/deppfellow/post-api/internal/sqlerr"
)

// TracingMiddleware owns the New Relic Echo integration. nrApp is nil when
// the agent is disabled, and both middlewares then pass requests through.
type TracingMiddleware struct {
	server *server.Server
	nrApp  *newrelic.Application
}

func NewTracingMiddleware(s *server.Server, nrApp *newrelic.Application) *TracingMiddleware {
	return &TracingMiddleware{
		server: s,
		nrApp:  nrApp,
	}
}

func (tm *TracingMiddleware) NewRelicMiddleware() echo.MiddlewareFunc {
	if tm.nrApp == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return next
		}
	}
	return nrecho.Middleware(tm.nrApp)
}

// EnhanceTracing tags the transaction with the request id and post id.
// Rejected requests (4xx) are recorded as attributes with their error
// code. Only server errors are noticed as errors. It must run after
// NewRelicMiddleware.
func (tm *TracingMiddleware) EnhanceTracing() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			txn := newrelic.FromContext(c.Request().Context())
			if txn == nil {
				return next(c)
			}

			txn.AddAttribute("http.real_ip", c.RealIP())

			if requestID := GetRequestID(c); requestID != "" {
				txn.AddAttribute("request.id", requestID)
			}

			if postID := c.Param("postId"); postID != "" {
				txn.AddAttribute("post.id", postID)
			}

			err := next(c)
			if err == nil {
				txn.AddAttribute("http.status_code", c.Response().Status)
				return nil
			}

			outcome := classifyError(err)

			// The error handler has not written the response yet, so the
			// status comes from the error itself.
			txn.AddAttribute("http.status_code", outcome.status)
			if outcome.code != "" {
				txn.AddAttribute("error.code", outcome.code)
			}

			if outcome.status >= http.StatusInternalServerError {
				txn.NoticeError(nrpkgerrors.Wrap(err))
			} else {
				txn.AddAttribute("request.rejected", true)
			}

			return err
		}
	}
}

type errorOutcome struct {
	status int
	code   string
}

// classifyError predicts the status the global error handler will answer
// with, running unknown errors through the same database error mapping.
func classifyError(err error) errorOutcome {
	var httpErr *errs.HTTPError
	var echoErr *echo.HTTPError

	if !errors.As(err, &httpErr) && !errors.As(err, &echoErr) {
		err = sqlerr.HandleError(err)
	}

	switch {
	case errors.As(err, &httpErr):
		return errorOutcome{status: httpErr.Status, code: httpErr.Code}
	case errors.As(err, &echoErr):
		return errorOutcome{status: echoErr.Code}
	default:
		return errorOutcome{status: http.StatusInternalServerError}
	}
}
