// Package merr defines the error taxonomy shared by every core component.
//
// Where a caller needs to branch on an error's class, components wrap one
// of these sentinels with fmt.Errorf("...: %w", Sentinel) so callers can
// use errors.Is while still getting a human-readable message. Errors that
// wrap no sentinel are treated as unclassified.
package merr

import "errors"

var (
	// ErrNotFound means an agent, task, template, or secret is absent.
	ErrNotFound = errors.New("not found")

	// ErrIllegalTransition means the job state machine rejected a write.
	// This is always a programmer bug and must be logged loudly, never
	// silently swallowed.
	ErrIllegalTransition = errors.New("illegal state transition")

	// ErrValidation means a template or request failed structural checks
	// (missing id/name/provider/model, unknown provider, unknown model).
	ErrValidation = errors.New("validation failed")

	// ErrStore means the underlying SQLite store failed.
	ErrStore = errors.New("store error")

	// ErrProvider means an LLM HTTP call returned a non-2xx response.
	ErrProvider = errors.New("provider error")

	// ErrTimeout means a caller-imposed deadline elapsed.
	ErrTimeout = errors.New("timeout")

	// ErrWorkerFailed means a task's execution returned a non-success
	// status. The executor's retry + failure-policy logic handles this
	// locally; it should rarely escape to a job row.
	ErrWorkerFailed = errors.New("worker failed")

	// ErrTransient flags network/rate-limit failures as retry-eligible.
	ErrTransient = errors.New("transient error")

	// ErrCanceled means a job's status was flipped to Canceled while its
	// graph was executing; the executor stops admitting new stages rather
	// than treating it as a worker failure.
	ErrCanceled = errors.New("job canceled")
)

// Classify reports whether err is recoverable by the executor's local
// retry logic (WorkerFailed, Transient) as opposed to something that must
// surface to the job row as a terminal failure.
func Classify(err error) (recoverable bool) {
	return errors.Is(err, ErrWorkerFailed) || errors.Is(err, ErrTransient)
}
