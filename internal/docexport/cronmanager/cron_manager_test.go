package cronmanager

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadJobs(t *testing.T) {
	var runs atomic.Int32
	cm := NewCronManager(JobRegistry{
		"count": {Func: func() { runs.Add(1) }, Schedule: "@every 1h"},
		"bad":   {Func: func() {}, Schedule: "not a schedule"},
	})

	err := cm.LoadJobs()
	assert.Error(t, err)

	cm.Start()
	defer cm.Stop()

	assert.False(t, cm.Next("count").IsZero())
	assert.True(t, cm.Next("bad").IsZero())

	require.NoError(t, cm.RunNow("count"))
	assert.EqualValues(t, 1, runs.Load())
	assert.ErrorIs(t, cm.RunNow("missing"), ErrUnknownJob)

	cm.RemoveJob("count")
	assert.True(t, cm.Next("count").IsZero())
}

func TestScheduledRun(t *testing.T) {
	done := make(chan struct{}, 1)
	cm := NewCronManager(JobRegistry{
		"tick": {Func: func() {
			select {
			case done <- struct{}{}:
			default:
			}
		}, Schedule: "@every 1s"},
	})
	require.NoError(t, cm.LoadJobs())
	cm.Start()
	defer cm.Stop()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("job was not executed")
	}
}
