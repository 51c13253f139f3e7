// Package metrics holds the metric names and tag conventions emitted by authgate.
package metrics

import (
	"time"

	apperrors "github.com/target/authgate/internal/errors"
	obserrors "github.com/target/authgate/internal/observability/errors"
	"github.com/target/authgate/internal/observability/statsd"
)

// Result constants for metric tagging.
const (
	ResultSuccess  = "success"
	ResultRejected = "rejected"
	ResultError    = "error"
)

// Operation names for auth metrics.
const (
	OpRegister        = "register"
	OpAuthenticate    = "authenticate"
	OpValidateSession = "validate_session"
	OpEndSession      = "end_session"
)

// AuthMetric captures the outcome of one auth operation.
type AuthMetric struct {
	Operation string
	Duration  time.Duration
	Err       error
}

// ResultFor buckets an operation error: nil is success, client-caused failures are
// rejected, and everything else is an error.
func ResultFor(err error) string {
	switch {
	case err == nil:
		return ResultSuccess
	case apperrors.IsValidation(err), apperrors.IsConflict(err),
		apperrors.IsNotFound(err), apperrors.IsUnauthorized(err):
		return ResultRejected
	default:
		return ResultError
	}
}

// EmitAuthOutcome emits standardised auth operation metrics.
func EmitAuthOutcome(sink statsd.Sink, in AuthMetric) {
	if sink == nil {
		return
	}

	result := ResultFor(in.Err)
	tags := map[string]string{
		"operation": in.Operation,
		"result":    result,
	}

	if in.Err != nil {
		if class := obserrors.Classify(in.Err); class != "" {
			tags["error_class"] = class
		}
	}

	sink.Count("auth.operation", 1, tags)

	if in.Duration > 0 {
		sink.Timing("auth.duration", in.Duration, CloneTags(tags))
	}
}

// CloneTags creates a shallow copy of a tag map.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
