package testhelpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"grveyardapp/pkg/result"
)

const flowTimeout = 5 * time.Second

// CollectStates drains a flow channel and returns every emission in order,
// failing the test if the flow does not close within the timeout.
func CollectStates[T any](t *testing.T, ch <-chan result.State[T]) []result.State[T] {
	t.Helper()

	var states []result.State[T]
	deadline := time.After(flowTimeout)
	for {
		select {
		case s, ok := <-ch:
			if !ok {
				return states
			}
			states = append(states, s)
		case <-deadline:
			require.FailNow(t, "flow did not complete in time")
			return nil
		}
	}
}

// Terminal drains a flow and returns its terminal Success or Error state,
// failing the test if the flow closed without one.
func Terminal[T any](t *testing.T, ch <-chan result.State[T]) result.State[T] {
	t.Helper()

	states := CollectStates(t, ch)
	for i := len(states) - 1; i >= 0; i-- {
		if states[i].Kind != result.KindLoading {
			return states[i]
		}
	}
	require.FailNow(t, "flow emitted no terminal state")
	return result.State[T]{}
}

// RequireSuccess asserts the flow ended in Success and returns the payload.
func RequireSuccess[T any](t *testing.T, ch <-chan result.State[T]) T {
	t.Helper()

	s := Terminal(t, ch)
	require.Equal(t, result.KindSuccess, s.Kind, "expected success, got %s (%s)", s.Kind, s.Err)
	return s.Data
}

// RequireError asserts the flow ended in Error and returns the message.
func RequireError[T any](t *testing.T, ch <-chan result.State[T]) string {
	t.Helper()

	s := Terminal(t, ch)
	require.Equal(t, result.KindError, s.Kind, "expected error, got %s", s.Kind)
	return s.Err
}
