package researchbridge

import "time"

// DispatchObservation captures one tool dispatch outcome.
type DispatchObservation struct {
	Op        Op
	RequestID string
	Elapsed   time.Duration
	Success   bool
	ErrorCode string
}

// Observer receives dispatch-level observability events. Implementations
// must be safe for concurrent use; the adapter calls them from every
// in-flight dispatch.
type Observer interface {
	ObserveDispatch(observation DispatchObservation)
}

type noopObserver struct{}

func (noopObserver) ObserveDispatch(DispatchObservation) {}
