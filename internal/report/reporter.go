package report

import (
	"os"
	"runtime"

	"github.com/getsentry/sentry-go"
)

// ConfigureScope sets global tags describing the process.
func ConfigureScope(env, version string) {
	sentry.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetTag("env", env)
		scope.SetTag("app_version", version)
		scope.SetTag("go_version", runtime.Version())
		scope.SetContext("host_info", map[string]interface{}{
			"hostname": hostname(),
		})
	})
}

func hostname() string {
	h, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return h
}

// Options adds tags, context and a level to a report.
type Options struct {
	Tags  map[string]string
	Extra map[string]interface{}
	Level sentry.Level
}

// ReportError sends err at error level. Nil errors are ignored.
func ReportError(err error) {
	ReportErrorWithOptions(err, Options{})
}

// ReportErrorWithOptions sends err with the given options. Nil errors are ignored.
func ReportErrorWithOptions(err error, opts Options) {
	if err == nil {
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		for k, v := range opts.Tags {
			scope.SetTag(k, v)
		}
		if opts.Extra != nil {
			scope.SetContext("extra", opts.Extra)
		}
		level := opts.Level
		if level == "" {
			level = sentry.LevelError
		}
		scope.SetLevel(level)
		sentry.CaptureException(err)
	})
}
