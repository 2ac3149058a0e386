package storage

import (
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/afero"

	"github.com/cuemby/rokt/pkg/metrics"
)

// lockRegistry provides an in-process fallback mutex keyed by path, used
// when the backing afero.Fs isn't the real OS filesystem (unit tests
// against afero.NewMemMapFs() have no real file for flock to lock).
var lockRegistry sync.Map // map[string]*sync.Mutex

func registryMutex(key string) *sync.Mutex {
	v, _ := lockRegistry.LoadOrStore(key, &sync.Mutex{})
	return v.(*sync.Mutex)
}

// acquireLock serializes a dataset's read-modify-write cycle (§9's
// "per-dataset locking keyed by name"). Against the real filesystem it
// takes an OS advisory lock via gofrs/flock so two server processes
// sharing a data directory would also serialize; otherwise it falls back
// to an in-process mutex. Either way the returned func releases it.
func acquireLock(fs afero.Fs, lockPath string) (release func(), err error) {
	start := time.Now()

	if _, ok := fs.(*afero.OsFs); ok {
		fl := flock.New(lockPath + ".lock")
		if err := fl.Lock(); err != nil {
			return nil, err
		}
		metrics.RecordLockWait(time.Since(start))
		return func() { _ = fl.Unlock() }, nil
	}

	mu := registryMutex(lockPath)
	mu.Lock()
	metrics.RecordLockWait(time.Since(start))
	return mu.Unlock, nil
}
