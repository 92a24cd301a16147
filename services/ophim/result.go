package ophim

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

type Outcome int

const (
	OutcomeOK Outcome = iota
	OutcomeEmpty
	OutcomeNotFound
	OutcomeFailed
)

func (s Outcome) String() string {
	switch s {
	case OutcomeOK:
		return "ok"
	case OutcomeEmpty:
		return "empty"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result is what every catalog query returns. Err is kept for diagnostics
// only; callers branch on Outcome.
type Result[T any] struct {
	Items   []T
	Outcome Outcome
	Err     error
}

func (s Result[T]) First() (*T, bool) {
	if len(s.Items) == 0 {
		return nil, false
	}
	return &s.Items[0], true
}

func found[T any](items []T) Result[T] {
	if len(items) == 0 {
		return Result[T]{Outcome: OutcomeEmpty}
	}
	return Result[T]{Items: items, Outcome: OutcomeOK}
}

func failed[T any](err error) Result[T] {
	o := OutcomeFailed
	if isNotFound(err) {
		o = OutcomeNotFound
	}
	return Result[T]{Outcome: o, Err: err}
}

// ErrUpstream marks a 200 response whose envelope does not report success.
var ErrUpstream = errors.New("upstream reported failure")

var errNoItem = errors.New("no item in response")

type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d", e.Code)
}

func isNotFound(err error) bool {
	if errors.Is(err, errNoItem) {
		return true
	}
	var se *StatusError
	return errors.As(err, &se) && se.Code == http.StatusNotFound
}
