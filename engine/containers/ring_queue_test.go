package containers

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRingQueueEnqueueDequeue(t *testing.T) {
	rq := NewRingQueue[int](3)
	require.True(t, rq.IsEmpty())

	require.NoError(t, rq.Enqueue(1))
	require.NoError(t, rq.Enqueue(2))
	require.NoError(t, rq.Enqueue(3))
	require.True(t, rq.IsFull())
	require.Error(t, rq.Enqueue(4))

	front, err := rq.Peek()
	require.NoError(t, err)
	require.Equal(t, 1, front)

	got, err := rq.Dequeue()
	require.NoError(t, err)
	require.Equal(t, 1, got)
	require.Equal(t, 2, rq.Len())
}

func TestRingQueuePushEvictsOldest(t *testing.T) {
	rq := NewRingQueue[float64](2)
	rq.Push(16.6)
	rq.Push(33.3)
	rq.Push(8.3)

	require.Equal(t, []float64{33.3, 8.3}, rq.Values())
}

func TestRingQueueDequeueEmpty(t *testing.T) {
	rq := NewRingQueue[int](1)
	_, err := rq.Dequeue()
	require.Error(t, err)
	_, err = rq.Peek()
	require.Error(t, err)
}
