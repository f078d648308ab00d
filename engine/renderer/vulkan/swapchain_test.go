package vulkan

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSwapchainTransitionTable(t *testing.T) {
	states := []SwapchainState{
		SwapchainStateUninitialized,
		SwapchainStateReady,
		SwapchainStateOutOfDate,
		SwapchainStateRecreating,
	}
	allowed := map[SwapchainState]SwapchainState{
		SwapchainStateUninitialized: SwapchainStateReady,
		SwapchainStateReady:         SwapchainStateOutOfDate,
		SwapchainStateOutOfDate:     SwapchainStateRecreating,
		SwapchainStateRecreating:    SwapchainStateReady,
	}

	for _, from := range states {
		for _, to := range states {
			expected := allowed[from] == to
			require.Equal(t, expected, validSwapchainTransition(from, to),
				"transition %s -> %s", from, to)
		}
	}
}

func TestSwapchainTransitionToFollowsLifecycle(t *testing.T) {
	swapchain := &VulkanSwapchain{State: SwapchainStateUninitialized}

	for _, next := range []SwapchainState{
		SwapchainStateReady,
		SwapchainStateOutOfDate,
		SwapchainStateRecreating,
		SwapchainStateReady,
	} {
		require.NoError(t, swapchain.TransitionTo(next))
		require.Equal(t, next, swapchain.State)
	}
}

func TestSwapchainTransitionToRejectsSkips(t *testing.T) {
	for testName, testCase := range map[string]struct {
		From SwapchainState
		To   SwapchainState
	}{
		"TestReadyCannotRecreate":      {From: SwapchainStateReady, To: SwapchainStateRecreating},
		"TestOutOfDateCannotGoReady":   {From: SwapchainStateOutOfDate, To: SwapchainStateReady},
		"TestRecreatingCannotGoStale":  {From: SwapchainStateRecreating, To: SwapchainStateOutOfDate},
		"TestNoSelfTransition":         {From: SwapchainStateReady, To: SwapchainStateReady},
		"TestNoReturnToUninitialized":  {From: SwapchainStateReady, To: SwapchainStateUninitialized},
		"TestUninitializedCannotStale": {From: SwapchainStateUninitialized, To: SwapchainStateOutOfDate},
	} {
		t.Run(testName, func(t *testing.T) {
			swapchain := &VulkanSwapchain{State: testCase.From}

			err := swapchain.TransitionTo(testCase.To)
			require.Error(t, err)
			require.Contains(t, err.Error(), testCase.From.String())
			require.Contains(t, err.Error(), testCase.To.String())
			// The failed transition must not move the state machine.
			require.Equal(t, testCase.From, swapchain.State)
		})
	}
}

func TestSwapchainStateString(t *testing.T) {
	require.Equal(t, "uninitialized", SwapchainStateUninitialized.String())
	require.Equal(t, "ready", SwapchainStateReady.String())
	require.Equal(t, "out-of-date", SwapchainStateOutOfDate.String())
	require.Equal(t, "recreating", SwapchainStateRecreating.String())
	require.Equal(t, "unknown", SwapchainState(99).String())
}
