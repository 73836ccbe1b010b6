// Package observability reports unexpected errors to Sentry.
package observability

import (
	"time"

	"github.com/getsentry/sentry-go"
)

// InitSentry configures the Sentry client and returns its flush func.
// An empty dsn disables reporting.
func InitSentry(dsn, env, release string) (func(), error) {
	if dsn == "" {
		return func() {}, nil
	}
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         dsn,
		Environment: env,
		Release:     release,
	}); err != nil {
		return func() {}, err
	}
	return func() { sentry.Flush(2 * time.Second) }, nil
}

// CaptureErr sends err to Sentry. It is a no-op when err is nil or Sentry
// is not initialized.
func CaptureErr(err error) {
	if err != nil {
		sentry.CaptureException(err)
	}
}
