package storage

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	ps "github.com/mitchellh/go-ps"

	"github.com/julianstephens/habitquest/internal/logger"
)

// ErrLocked is returned when another live process holds the data lock.
var ErrLocked = errors.New("data file is in use by another habitquest process")

// findProcessFunc is overridable in tests.
var findProcessFunc = ps.FindProcess

// Lock is an advisory lock file holding the owner's PID.
type Lock struct {
	path string
}

// AcquireLock creates the lock file at path. A lock left behind by a process that
// is no longer running is reclaimed.
func AcquireLock(path string) (*Lock, error) {
	for attempt := 0; attempt < 2; attempt++ {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
		if err == nil {
			_, werr := f.WriteString(strconv.Itoa(os.Getpid()))
			cerr := f.Close()
			if werr != nil || cerr != nil {
				os.Remove(path)
				return nil, fmt.Errorf("failed to write lock file: %w", errors.Join(werr, cerr))
			}
			return &Lock{path: path}, nil
		}
		if !os.IsExist(err) {
			return nil, fmt.Errorf("failed to create lock file: %w", err)
		}

		pid, alive, err := lockOwner(path)
		if err != nil {
			return nil, err
		}
		if alive && pid != os.Getpid() {
			return nil, fmt.Errorf("%w (pid %d)", ErrLocked, pid)
		}
		logger.Warn("Removing stale lock file", "path", path, "pid", pid)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to remove stale lock file: %w", err)
		}
	}
	return nil, ErrLocked
}

func lockOwner(path string) (int, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to read lock file: %w", err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		// unreadable contents are treated as stale
		return 0, false, nil
	}
	proc, err := findProcessFunc(pid)
	if err != nil {
		return pid, false, fmt.Errorf("failed to look up lock owner: %w", err)
	}
	return pid, proc != nil, nil
}

// Release removes the lock file.
func (l *Lock) Release() error {
	if l == nil {
		return nil
	}
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
