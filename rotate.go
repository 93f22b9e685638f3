package logtree

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/linchenxuan/logtree/metrics"
)

const (
	// Default file permissions for log files and directories.
	defaultFileMode = 0644
	defaultDirMode  = 0755

	// lockSuffix names the sibling advisory lock used to serialize rotation
	// across processes sharing one log path.
	lockSuffix = ".lock"
)

// rollingFile owns the file handle behind FILE and DAILY_ROLLING_FILE
// appenders: lazy open in append mode, calendar-day rotation with
// date-suffixed backups, bounded backup retention and optional lock-file
// coordination. It has two states, closed (fd nil) and open.
//
// rollingFile is not goroutine-safe on its own; the owning FileAppender
// serializes every call under its write mutex.
type rollingFile struct {
	path       string // absolute target path, fixed at construction
	daily      bool   // rotate on calendar date change
	lockFile   bool   // guard rotation with a sibling .lock file
	maxBackups int    // retained backups beyond the active file

	fd        *os.File
	openedDay time.Time // calendar day the current file was opened for

	now func() time.Time // injectable clock
}

// newRollingFile builds a closed manager for path. Relative paths are
// resolved against the current working directory here, once, never again at
// write time.
func newRollingFile(path string, daily, lockFile bool, maxBackups int) (*rollingFile, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve path %q: %v", ErrInvalidConfig, path, err)
	}
	return &rollingFile{
		path:       abs,
		daily:      daily,
		lockFile:   lockFile,
		maxBackups: maxBackups,
		now:        time.Now,
	}, nil
}

// write appends buf to the target file, opening it on first use and rotating
// first when the calendar day changed. A failed rotation never loses the
// in-flight record: the write falls back to the file that is already open
// and rotation is retried on the next write. In that case the returned error
// describes the rotation failure even though buf was persisted.
func (r *rollingFile) write(buf []byte) error {
	if err := r.ensureOpen(); err != nil {
		return err
	}

	var rotateErr error
	if r.daily && !sameDay(r.openedDay, r.now()) {
		if rotateErr = r.rotate(); rotateErr != nil {
			metrics.RotationFailures.Inc()
			// The old descriptor (or a reopened handle on the same path)
			// is still valid; append there and retry rotation later.
			if r.fd == nil {
				if err := r.reopen(); err != nil {
					return err
				}
			}
		}
	}

	if _, err := r.fd.Write(buf); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrAppenderWrite, r.path, err)
	}
	return rotateErr
}

// refresh syncs the open file to stable storage.
func (r *rollingFile) refresh() error {
	if r.fd == nil {
		return nil
	}
	return r.fd.Sync()
}

// close releases the file handle, returning the manager to the closed state.
func (r *rollingFile) close() error {
	if r.fd == nil {
		return nil
	}
	err := r.fd.Close()
	r.fd = nil
	return err
}

// ensureOpen transitions closed -> open: parent directories are created as
// needed and the file is opened in append mode. The day the file counts as
// opened for is taken from its modification time, so a restart mid-day does
// not reset the rotation boundary of a file that already has content.
func (r *rollingFile) ensureOpen() error {
	if r.fd != nil {
		return nil
	}

	if dir := filepath.Dir(r.path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, defaultDirMode); err != nil {
			return fmt.Errorf("%w: create directory %s: %v", ErrAppenderWrite, dir, err)
		}
	}

	fd, err := os.OpenFile(r.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, defaultFileMode)
	if err != nil {
		return fmt.Errorf("%w: open %s: %v", ErrAppenderWrite, r.path, err)
	}

	day := r.now()
	if fi, statErr := fd.Stat(); statErr == nil && fi.Size() > 0 {
		day = fi.ModTime()
	}

	r.fd = fd
	r.openedDay = day
	return nil
}

// reopen re-acquires a handle on the original path after a rotation attempt
// closed the previous one.
func (r *rollingFile) reopen() error {
	fd, err := os.OpenFile(r.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, defaultFileMode)
	if err != nil {
		return fmt.Errorf("%w: reopen %s: %v", ErrAppenderWrite, r.path, err)
	}
	r.fd = fd
	return nil
}

// rotate closes the active file, renames it to a date-suffixed backup, opens
// a fresh file at the original path and evicts backups beyond maxBackups.
// When lock-file coordination is on, the whole rename+reopen sequence runs
// under the sibling lock, released on every exit path.
func (r *rollingFile) rotate() error {
	if r.lockFile {
		release, err := acquireLockFile(r.path + lockSuffix)
		if err != nil {
			return err
		}
		defer release()
	}

	if err := r.fd.Close(); err != nil {
		r.fd = nil
		return fmt.Errorf("%w: close %s: %v", ErrAppenderWrite, r.path, err)
	}
	r.fd = nil

	backup, err := backupName(r.path, r.openedDay)
	if err != nil {
		return err
	}
	if err := os.Rename(r.path, backup); err != nil {
		return fmt.Errorf("%w: rename %s: %v", ErrAppenderWrite, r.path, err)
	}

	if err := r.reopen(); err != nil {
		return err
	}
	r.openedDay = r.now()

	metrics.Rotations.Inc()
	r.evictBackups()
	return nil
}

// backupName picks an unused backup path carrying the calendar date the
// rotated file was written on: <path>.2006-01-02, then .2006-01-02.1 and so
// on when a backup from the same day already exists.
func backupName(path string, day time.Time) (string, error) {
	base := path + "." + day.Format("2006-01-02")

	candidate := base
	for i := 1; i <= 1000; i++ {
		_, err := os.Stat(candidate)
		if os.IsNotExist(err) {
			return candidate, nil
		}
		if err != nil {
			return "", fmt.Errorf("%w: stat %s: %v", ErrAppenderWrite, candidate, err)
		}
		candidate = fmt.Sprintf("%s.%d", base, i)
	}
	return "", fmt.Errorf("%w: no free backup name for %s", ErrAppenderWrite, path)
}

// evictBackups deletes the oldest backups of the target file until at most
// maxBackups remain. Eviction is FIFO by rotation order (modification time).
// Failures here are deliberately dropped: retention is best-effort and must
// not fail the write that triggered the rotation.
func (r *rollingFile) evictBackups() {
	backups := r.listBackups()
	for len(backups) > r.maxBackups {
		if os.Remove(backups[0]) == nil {
			metrics.BackupsEvicted.Inc()
		}
		backups = backups[1:]
	}
}

// listBackups returns the existing backup files for the target path, oldest
// first. The sibling lock file is not a backup.
func (r *rollingFile) listBackups() []string {
	dir := filepath.Dir(r.path)
	prefix := filepath.Base(r.path) + "."

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	type backup struct {
		path string
		mod  time.Time
	}
	var found []backup
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, prefix) || strings.HasSuffix(name, lockSuffix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		found = append(found, backup{path: filepath.Join(dir, name), mod: info.ModTime()})
	}

	sort.Slice(found, func(i, j int) bool { return found[i].mod.Before(found[j].mod) })

	paths := make([]string, len(found))
	for i, b := range found {
		paths[i] = b.path
	}
	return paths
}

// acquireLockFile takes the advisory rotation lock by creating lockPath
// exclusively. The returned release function removes the lock and is safe to
// call exactly once on any exit path.
func acquireLockFile(lockPath string) (func(), error) {
	fd, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, defaultFileMode)
	if err != nil {
		if os.IsExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrLockHeld, lockPath)
		}
		return nil, fmt.Errorf("%w: create lock %s: %v", ErrAppenderWrite, lockPath, err)
	}
	fmt.Fprintf(fd, "%d\n", os.Getpid())

	return func() {
		fd.Close()
		os.Remove(lockPath)
	}, nil
}

// sameDay reports whether a and b fall on the same calendar date.
func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
