package worker

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSweeper struct {
	calls int
	rows  int64
}

func (s *stubSweeper) MarkOverdue(ctx context.Context) (int64, error) {
	s.calls++
	return s.rows, nil
}

func TestOverdueSchedulerRunsSweep(t *testing.T) {
	sweeper := &stubSweeper{rows: 3}

	c := StartOverdueScheduler(context.Background(), sweeper)
	defer c.Stop()

	entries := c.Entries()
	require.Len(t, entries, 1)

	// Run the registered job directly instead of waiting for 03:00.
	entries[0].Job.Run()
	assert.Equal(t, 1, sweeper.calls)
}
