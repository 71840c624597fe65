// Package lockfile keeps two timediary processes from auto-saving at once.
//
// The lock is a file holding "pid|executable|acquired-at". A lock whose
// process has exited, or whose pid now belongs to another program, is stale
// and is taken over.
package lockfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/go-ps"

	"github.com/julianstephens/timediary/internal/logger"
)

var (
	findProcessFunc = ps.FindProcess
	executableFunc  = os.Executable
	getpidFunc      = os.Getpid
)

// HeldError is returned by Acquire when another live process owns the lock.
type HeldError struct {
	PID   int
	Since time.Time
}

func (e *HeldError) Error() string {
	return fmt.Sprintf("auto-save is already running in process %d (since %s)", e.PID, e.Since.Format(time.Kitchen))
}

type Lock struct {
	path string
	pid  int
}

// Acquire takes the lock at path or returns a *HeldError.
func Acquire(path string) (*Lock, error) {
	self := getpidFunc()
	exe := executableName()

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}

	for attempt := 0; attempt < 2; attempt++ {
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
		if err == nil {
			_, werr := fmt.Fprintf(f, "%d|%s|%s", self, exe, time.Now().UTC().Format(time.RFC3339))
			cerr := f.Close()
			if werr != nil || cerr != nil {
				os.Remove(path)
				return nil, fmt.Errorf("failed to write lockfile: %w", errors.Join(werr, cerr))
			}
			return &Lock{path: path, pid: self}, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("failed to create lockfile: %w", err)
		}

		owner, err := read(path)
		if err == nil && owner.pid == self {
			return &Lock{path: path, pid: self}, nil
		}
		if err == nil && alive(owner) {
			return nil, &HeldError{PID: owner.pid, Since: owner.since}
		}

		logger.Debug("Removing stale lockfile", "path", path, "error", err)
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to remove stale lockfile: %w", err)
		}
	}
	return nil, fmt.Errorf("failed to acquire lockfile %s", path)
}

// Release removes the lockfile if this process still owns it.
func (l *Lock) Release() error {
	if l == nil {
		return nil
	}
	owner, err := read(l.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err == nil && owner.pid != l.pid {
		return nil
	}
	if err := os.Remove(l.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove lockfile: %w", err)
	}
	return nil
}

type owner struct {
	pid   int
	exe   string
	since time.Time
}

func read(path string) (owner, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return owner{}, err
	}
	parts := strings.Split(strings.TrimSpace(string(content)), "|")
	if len(parts) != 3 {
		return owner{}, errors.New("lockfile is malformed")
	}
	pid, err := strconv.Atoi(parts[0])
	if err != nil || pid <= 0 {
		return owner{}, errors.New("invalid process ID in lockfile")
	}
	since, _ := time.Parse(time.RFC3339, parts[2])
	return owner{pid: pid, exe: parts[1], since: since}, nil
}

// alive reports whether the owning process is still running the same program.
// Process names may be truncated by the OS, so a prefix match either way counts.
func alive(o owner) bool {
	p, err := findProcessFunc(o.pid)
	if err != nil || p == nil {
		return false
	}
	running := p.Executable()
	return strings.HasPrefix(running, o.exe) || strings.HasPrefix(o.exe, running)
}

func executableName() string {
	path, err := executableFunc()
	if err != nil {
		return "timediary"
	}
	return filepath.Base(path)
}
