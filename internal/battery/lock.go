package battery

import (
	"errors"
	"fmt"
	"os"
	"syscall"
	"time"
)

// lockTimeout bounds how long a writer waits for the ledger file lock.
const lockTimeout = 2 * time.Second

const lockFilePerms = 0o644

var (
	errLockTimeout  = errors.New("lock timeout")
	errLockFileOpen = errors.New("failed to open lock file")
)

// withLock executes handler while holding an exclusive advisory lock on
// path+".lock", so concurrent battery runs appending to the same ledger
// file serialize their writes.
func withLock(path string, handler func() error) error {
	lock, err := acquireLock(path)
	if err != nil {
		return fmt.Errorf("acquiring lock: %w", err)
	}

	defer lock.release()

	return handler()
}

type fileLock struct {
	path string
	file *os.File
}

// release order matters: remove while holding the lock, then unlock, then
// close.
func (l *fileLock) release() {
	if l.file != nil {
		_ = os.Remove(l.path)
		_ = syscall.Flock(int(l.file.Fd()), syscall.LOCK_UN)
		_ = l.file.Close()
		l.file = nil
	}
}

func acquireLock(path string) (*fileLock, error) {
	lockPath := path + ".lock"
	deadline := time.Now().Add(lockTimeout)

	for {
		file, openErr := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, lockFilePerms)
		if openErr != nil {
			return nil, fmt.Errorf("%w: %w", errLockFileOpen, openErr)
		}

		flockErr := syscall.Flock(int(file.Fd()), syscall.LOCK_EX|syscall.LOCK_NB)
		if flockErr == nil {
			return &fileLock{path: lockPath, file: file}, nil
		}

		_ = file.Close()

		if time.Now().After(deadline) {
			return nil, fmt.Errorf("%w: %s", errLockTimeout, path)
		}

		time.Sleep(10 * time.Millisecond)
	}
}
