package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingLoader struct {
	calls int32
	err   error
}

func (l *countingLoader) Load(ctx context.Context) error {
	atomic.AddInt32(&l.calls, 1)
	return l.err
}

func TestNewRefresherDisabled(t *testing.T) {
	r, err := NewRefresher("", time.UTC, &countingLoader{}, 0)
	require.NoError(t, err)
	assert.Nil(t, r)

	r.Start()
	r.Stop()
	assert.True(t, r.Next().IsZero())
}

func TestNewRefresherInvalidSchedule(t *testing.T) {
	_, err := NewRefresher("every tuesday", time.UTC, &countingLoader{}, 0)
	assert.Error(t, err)
}

func TestRefresherRuns(t *testing.T) {
	loader := &countingLoader{err: errors.New("read endpoint down")}
	r, err := NewRefresher("@every 1s", time.UTC, loader, time.Second)
	require.NoError(t, err)

	r.Start()
	defer r.Stop()

	assert.False(t, r.Next().IsZero())
	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&loader.calls) > 0
	}, 5*time.Second, 50*time.Millisecond)
}

func TestRefresherRunDirect(t *testing.T) {
	loader := &countingLoader{}
	r, err := NewRefresher("0 8 * * 1-5", time.UTC, loader, 0)
	require.NoError(t, err)

	r.run()
	assert.Equal(t, int32(1), atomic.LoadInt32(&loader.calls))
}
