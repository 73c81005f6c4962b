package pageinsight

// outcome is the result of one per-item attempt (a JSON-LD block, a link
// probe). Failures stay attached to their item and are reduced into counts
// or lists instead of aborting the batch.
type outcome[T any] struct {
	value T
	err   error
}

func succeeded[T any](v T) outcome[T] { return outcome[T]{value: v} }

func failed[T any](err error) outcome[T] { return outcome[T]{err: err} }

func (o outcome[T]) ok() bool { return o.err == nil }
