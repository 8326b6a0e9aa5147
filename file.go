package temptrace

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/ospiem/temptrace/internal/caller"
	"github.com/ospiem/temptrace/internal/tempname"
)

// FileOptions configures one file creation. The zero value creates a
// locked, persistent, unlogged file directly in the session directory.
type FileOptions struct {
	// Suffix is appended verbatim to the generated name, e.g. ".json".
	Suffix string

	// Dir places the file in the named subdirectory of the session
	// directory, creating it (and intermediate segments) on demand.
	Dir string

	// Unlink removes the file when its handle is closed. The session's
	// own cleanup removes it otherwise, so this is off by default.
	Unlink bool

	// NoLock skips the advisory exclusive lock taken on the new file.
	NoLock bool

	// Log writes a creation-log entry to a sibling "<path>.log" file,
	// overwriting any previous one. Independent of the session log.
	Log bool
}

// A File is a temporary file created through a Session. Closing it
// releases its lock and, when Unlink was set, removes it.
type File struct {
	*os.File
	lock   *flock.Flock
	unlink bool
}

// Close releases the advisory lock, closes the handle, and removes the
// file if it was created with Unlink.
func (f *File) Close() error {
	if f.lock != nil {
		_ = f.lock.Unlock()
	}
	err := f.File.Close()
	if f.unlink {
		if rmErr := os.Remove(f.Name()); rmErr != nil && err == nil {
			err = rmErr
		}
	}
	return err
}

// Create makes a new uniquely-named file inside the session directory.
// The name prefix identifies the function that called Create, skipping
// any frames registered in the session's skip set, so helpers that
// forward file requests credit their own caller. A creation event is
// written to the session log when one exists, and to a sibling log file
// when FileOptions.Log is set; transient (Unlink) files are logged too.
//
// Subdirectory failures are *PathError, allocation failures are
// *AllocationError.
func (s *Session) Create(opts FileOptions) (*File, error) {
	label := caller.Attribute(s.skip.Contains, 1)
	template := caller.Sanitize(label)

	dir := s.dir
	if opts.Dir != "" {
		dir = filepath.Join(s.dir, opts.Dir)
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, &PathError{Path: dir, Err: err}
		}
	}

	f, err := tempname.Create(dir, template, opts.Suffix)
	if err != nil {
		return nil, &AllocationError{Dir: dir, Template: template, Err: err}
	}
	path := f.Name()

	var lock *flock.Flock
	if !opts.NoLock {
		lock = flock.New(path)
		locked, lockErr := lock.TryLock()
		if lockErr == nil && !locked {
			lockErr = fmt.Errorf("%s: already locked", path)
		}
		if lockErr != nil {
			_ = f.Close()
			_ = os.Remove(path)
			return nil, &AllocationError{Dir: dir, Template: template, Err: lockErr}
		}
	}

	if s.logFile != nil || opts.Log {
		entry := logEntry(time.Now(), path, caller.Stack(1))
		if s.logFile != nil {
			s.logMu.Lock()
			_, logErr := s.logFile.WriteString(entry)
			s.logMu.Unlock()
			if logErr != nil {
				s.logger.Warn().Err(logErr).Str("path", path).Msg("session log append failed")
			}
		}
		if opts.Log {
			if logErr := os.WriteFile(path+".log", []byte(entry), 0600); logErr != nil {
				s.logger.Warn().Err(logErr).Str("path", path).Msg("sibling log write failed")
			}
		}
	}

	s.logger.Debug().Str("path", path).Str("label", label).Msg("temp file created")
	return &File{File: f, lock: lock, unlink: opts.Unlink}, nil
}
