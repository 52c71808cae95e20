package jobs

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	maturityLockKey = "locks:maturity-sweep"
	defaultBatch    = 100
)

// releaseScript deletes the lock only if this instance still owns it.
const releaseScript = `if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`

// MaturitySweeper is the subset of the maturity processor the job drives.
type MaturitySweeper interface {
	SweepDue(ctx context.Context, limit int) (int, error)
}

// MaturitySweepJob pays out matured investments nobody has read yet. With a
// redis client only the replica holding the lock sweeps.
type MaturitySweepJob struct {
	sweeper  MaturitySweeper
	rdb      *redis.Client
	batch    int
	lockTTL  time.Duration
	owner    string
	stopChan chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewMaturitySweepJob creates a job. rdb may be nil.
func NewMaturitySweepJob(sweeper MaturitySweeper, rdb *redis.Client, batch int, interval time.Duration) *MaturitySweepJob {
	if batch <= 0 {
		batch = defaultBatch
	}
	return &MaturitySweepJob{
		sweeper:  sweeper,
		rdb:      rdb,
		batch:    batch,
		lockTTL:  interval,
		owner:    uuid.NewString(),
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start runs a sweep immediately and then every interval until Stop.
func (j *MaturitySweepJob) Start(interval time.Duration) {
	go func() {
		defer close(j.done)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() {
			<-j.stopChan
			cancel()
		}()

		j.runAndLog(ctx)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				j.runAndLog(ctx)
			case <-j.stopChan:
				zap.L().Info("Maturity sweep job stopped")
				return
			}
		}
	}()
	zap.L().Info("Maturity sweep job started",
		zap.Duration("interval", interval),
		zap.Int("batch", j.batch),
		zap.Bool("distributed_lock", j.rdb != nil))
}

// Stop signals the job and waits for the running sweep to return.
func (j *MaturitySweepJob) Stop() {
	j.stopOnce.Do(func() { close(j.stopChan) })
	<-j.done
}

func (j *MaturitySweepJob) runAndLog(ctx context.Context) {
	paid, ran, err := j.RunOnce(ctx)
	if errors.Is(err, context.Canceled) {
		return
	}
	if err != nil {
		zap.L().Error("Maturity sweep failed", zap.Error(err))
		return
	}
	if ran && paid > 0 {
		zap.L().Info("Maturity sweep paid out investments", zap.Int("paid", paid))
	}
}

// RunOnce performs one sweep. ran is false when another replica holds the lock.
func (j *MaturitySweepJob) RunOnce(ctx context.Context) (paid int, ran bool, err error) {
	if j.rdb != nil {
		acquired, err := j.rdb.SetNX(ctx, maturityLockKey, j.owner, j.lockTTL).Result()
		if err != nil {
			zap.L().Warn("Failed to acquire maturity sweep lock, skipping", zap.Error(err))
			return 0, false, nil
		}
		if !acquired {
			return 0, false, nil
		}
		defer j.release()
	}

	paid, err = j.sweeper.SweepDue(ctx, j.batch)
	return paid, true, err
}

func (j *MaturitySweepJob) release() {
	// The sweep context may already be cancelled on shutdown.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := j.rdb.Eval(ctx, releaseScript, []string{maturityLockKey}, j.owner).Err(); err != nil {
		zap.L().Warn("Failed to release maturity sweep lock", zap.Error(err))
	}
}
