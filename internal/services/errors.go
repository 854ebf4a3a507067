package services

import "fmt"

// ConfigError means the caller must fix settings or input before retrying.
type ConfigError struct{ Message string }

func (e *ConfigError) Error() string { return e.Message }

// ConnectivityError means a downstream service could not be reached.
type ConnectivityError struct {
	Target string
	Err    error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("Cannot connect to %s: %v", e.Target, e.Err)
}

func (e *ConnectivityError) Unwrap() error { return e.Err }

// UpstreamError means the downstream answered with a failure status.
// Body is truncated to maxUpstreamBody characters.
type UpstreamError struct {
	Service    string
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s error: %s", e.Service, e.Body)
}

// MalformedResponseError means the downstream payload could not be parsed.
type MalformedResponseError struct {
	Service string
	Err     error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("%s returned invalid JSON. Check configuration.", e.Service)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

const maxUpstreamBody = 500

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
