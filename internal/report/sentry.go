// Package report sends unexpected errors to Sentry. With an empty DSN the
// Sentry client is still installed but drops every event.
package report

import (
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
)

// Config holds Sentry configuration.
type Config struct {
	DSN         string
	Environment string
	Release     string

	// TracesSampleRate is the fraction of transactions sent (default 0).
	TracesSampleRate float64

	// BeforeSend can drop or modify events. Optional.
	BeforeSend func(event *sentry.Event, hint *sentry.EventHint) *sentry.Event
}

// Setup initializes the global Sentry client and scope tags.
func Setup(cfg Config) error {
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		Release:          cfg.Release,
		EnableTracing:    cfg.TracesSampleRate > 0,
		TracesSampleRate: cfg.TracesSampleRate,
		AttachStacktrace: true,
		BeforeSend:       cfg.BeforeSend,
	})
	if err != nil {
		return fmt.Errorf("sentry init: %w", err)
	}
	ConfigureScope(cfg.Environment, cfg.Release)
	return nil
}

// Flush waits up to two seconds for buffered events to be sent.
func Flush() {
	sentry.Flush(2 * time.Second)
}
