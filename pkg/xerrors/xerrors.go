// Package xerrors defines the error-kind taxonomy shared by every layer of
// the workflow engine. Callers that branch on an error read its Kind with
// KindOf rather than parsing error strings; the orchestrator's retry path
// does not branch on Kind and retries every failure until a task's attempts
// are exhausted.
package xerrors

import (
	"errors"
	"fmt"
)

// Kind classifies an error for the purpose of retry/cascade decisions.
type Kind int

const (
	// KindUnknown is the zero value, reported for errors that carry no Kind.
	KindUnknown Kind = iota
	// KindNotFound marks an entity lookup miss.
	KindNotFound
	// KindForbidden marks an authorization refusal.
	KindForbidden
	// KindConflict marks a uniqueness or state-machine violation.
	KindConflict
	// KindTransient marks a network, deadlock, or token-expiry failure that
	// the layer which incurred it is expected to retry internally.
	KindTransient
	// KindPermanent marks an exhausted-retries, malformed-payload, or
	// impossible-state failure.
	KindPermanent
	// KindExternalFailed marks a terminal failure reported by the external
	// workflow executor.
	KindExternalFailed
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindConflict:
		return "conflict"
	case KindTransient:
		return "transient"
	case KindPermanent:
		return "permanent"
	case KindExternalFailed:
		return "external_failed"
	default:
		return "unknown"
	}
}

// Error is a wrapped, kind-tagged error. Op names the failing operation
// (e.g. "orchestrator.dispatchWorkflow") for log correlation.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// New wraps err with the given kind and operation name. Returns nil if err
// is nil.
func New(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf extracts the Kind from err, walking the unwrap chain. Returns
// KindUnknown if err does not carry a Kind (including err == nil).
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsRetryable reports whether err is of KindTransient. The orchestrator's
// retry path (failOrRetry) does not call it: it schedules another attempt
// for an error of any kind until the task's attempts are exhausted.
func IsRetryable(err error) bool {
	return KindOf(err) == KindTransient
}
