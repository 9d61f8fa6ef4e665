package result

import "context"

// Kind discriminates the three observable states of an asynchronous operation.
type Kind int

const (
	KindLoading Kind = iota
	KindSuccess
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindLoading:
		return "loading"
	case KindSuccess:
		return "success"
	case KindError:
		return "error"
	default:
		return "unknown"
	}
}

// State is the tri-state wrapper every flow in this module emits. Exactly one
// of the variants is current: Loading carries nothing, Success carries Data,
// Error carries Err. Consumers switch on Kind.
type State[T any] struct {
	Kind Kind
	Data T
	Err  string
}

func Loading[T any]() State[T] {
	return State[T]{Kind: KindLoading}
}

func Success[T any](data T) State[T] {
	return State[T]{Kind: KindSuccess, Data: data}
}

func Error[T any](msg string) State[T] {
	return State[T]{Kind: KindError, Err: msg}
}

// Emit delivers s on out unless ctx is cancelled first. It reports whether the
// value was delivered, so emitters can stop after their consumer goes away.
func Emit[T any](ctx context.Context, out chan<- State[T], s State[T]) bool {
	select {
	case out <- s:
		return true
	case <-ctx.Done():
		return false
	}
}

// Collect drains a flow channel and returns the terminal state: the last
// Success or Error observed before the channel closed.
func Collect[T any](ch <-chan State[T]) (State[T], bool) {
	var last State[T]
	seen := false
	for s := range ch {
		if s.Kind != KindLoading {
			last = s
			seen = true
		}
	}
	return last, seen
}
