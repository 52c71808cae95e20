package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSweeper struct {
	calls atomic.Int32
	paid  int
	err   error
}

func (f *fakeSweeper) SweepDue(ctx context.Context, limit int) (int, error) {
	f.calls.Add(1)
	return f.paid, f.err
}

func TestRunOnceWithoutRedis(t *testing.T) {
	sweeper := &fakeSweeper{paid: 3}
	job := NewMaturitySweepJob(sweeper, nil, 10, time.Minute)

	paid, ran, err := job.RunOnce(context.Background())
	require.NoError(t, err)
	assert.True(t, ran)
	assert.Equal(t, 3, paid)
	assert.Equal(t, int32(1), sweeper.calls.Load())
}

func TestRunOnceTakesLock(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	sweeper := &fakeSweeper{paid: 2}
	job := NewMaturitySweepJob(sweeper, rdb, 10, time.Minute)
	job.owner = "replica-a"

	mock.ExpectSetNX(maturityLockKey, "replica-a", time.Minute).SetVal(true)
	mock.ExpectEval(releaseScript, []string{maturityLockKey}, "replica-a").SetVal(int64(1))

	paid, ran, err := job.RunOnce(context.Background())
	require.NoError(t, err)
	assert.True(t, ran)
	assert.Equal(t, 2, paid)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunOnceSkipsWhenLockHeld(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	sweeper := &fakeSweeper{}
	job := NewMaturitySweepJob(sweeper, rdb, 10, time.Minute)
	job.owner = "replica-b"

	mock.ExpectSetNX(maturityLockKey, "replica-b", time.Minute).SetVal(false)

	_, ran, err := job.RunOnce(context.Background())
	require.NoError(t, err)
	assert.False(t, ran)
	assert.Zero(t, sweeper.calls.Load())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunOnceSkipsOnRedisError(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	sweeper := &fakeSweeper{}
	job := NewMaturitySweepJob(sweeper, rdb, 10, time.Minute)
	job.owner = "replica-c"

	mock.ExpectSetNX(maturityLockKey, "replica-c", time.Minute).SetErr(errors.New("connection refused"))

	_, ran, err := job.RunOnce(context.Background())
	require.NoError(t, err)
	assert.False(t, ran)
	assert.Zero(t, sweeper.calls.Load())
}

func TestRunOnceReleasesLockOnFailure(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	sweeper := &fakeSweeper{err: errors.New("db down")}
	job := NewMaturitySweepJob(sweeper, rdb, 10, time.Minute)
	job.owner = "replica-d"

	mock.ExpectSetNX(maturityLockKey, "replica-d", time.Minute).SetVal(true)
	mock.ExpectEval(releaseScript, []string{maturityLockKey}, "replica-d").SetVal(int64(1))

	_, ran, err := job.RunOnce(context.Background())
	assert.Error(t, err)
	assert.True(t, ran)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStartStop(t *testing.T) {
	sweeper := &fakeSweeper{}
	job := NewMaturitySweepJob(sweeper, nil, 0, 10*time.Millisecond)
	assert.Equal(t, defaultBatch, job.batch)

	job.Start(10 * time.Millisecond)
	require.Eventually(t, func() bool { return sweeper.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	job.Stop()
	job.Stop()

	calls := sweeper.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, calls, sweeper.calls.Load())
}
