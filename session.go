package temptrace

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"

	"github.com/ospiem/temptrace/internal/caller"
	"github.com/ospiem/temptrace/internal/tempname"
)

// Options configures a Session. The zero value creates a directory under
// os.TempDir() named after the running program, removed on Close, with
// no creation log.
type Options struct {
	// Keep disables removal of the directory on Close.
	Keep bool

	// Template is the directory name template. It is sanitized and a
	// random suffix appended. Defaults to the program name.
	Template string

	// Parent is the directory to create the session directory in.
	// Defaults to os.TempDir(). It must already exist.
	Parent string

	// Path, if set, is used verbatim as the session directory (created
	// with MkdirAll, no random suffix). Template and Parent are ignored.
	Path string

	// Log enables the session creation log, an append-only file inside
	// the directory named after it.
	Log bool

	// Skip is the attribution skip set. Defaults to the process-wide
	// set populated via Register and RegisterFunc.
	Skip *SkipSet

	// Logger receives diagnostics (creation events, cleanup warnings).
	// Nil disables them.
	Logger *zerolog.Logger
}

// A Session owns one temporary directory and an optional creation log.
// Files created through it are named after the function that requested
// them. Release it with Close.
type Session struct {
	dir    string
	keep   bool
	skip   *SkipSet
	logger zerolog.Logger

	logMu   sync.Mutex
	logFile *os.File

	closeMu  sync.Mutex
	closed   bool
	warnings []CleanupWarning
}

// New creates the session directory eagerly and, when requested, its
// creation log. Failures are reported as *AllocationError.
func New(opts Options) (*Session, error) {
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	skip := opts.Skip
	if skip == nil {
		skip = defaultSkip
	}

	var dir string
	if opts.Path != "" {
		if err := os.MkdirAll(opts.Path, 0700); err != nil {
			return nil, &AllocationError{Dir: filepath.Dir(opts.Path), Template: filepath.Base(opts.Path), Err: err}
		}
		dir = opts.Path
	} else {
		parent := opts.Parent
		if parent == "" {
			parent = os.TempDir()
		}
		template := opts.Template
		if template == "" {
			template = filepath.Base(os.Args[0])
		}
		var err error
		dir, err = tempname.Mkdir(parent, caller.Sanitize(template))
		if err != nil {
			return nil, &AllocationError{Dir: parent, Template: template, Err: err}
		}
	}
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}

	s := &Session{
		dir:    dir,
		keep:   opts.Keep,
		skip:   skip,
		logger: logger,
	}

	if opts.Log {
		path := filepath.Join(dir, filepath.Base(dir)+".log")
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
		if err != nil {
			if !opts.Keep {
				_ = os.RemoveAll(dir)
			}
			return nil, &AllocationError{Dir: dir, Template: filepath.Base(path), Err: err}
		}
		s.logFile = f
	}

	logger.Debug().Str("dir", dir).Bool("log", s.logFile != nil).Msg("temp session created")
	return s, nil
}

// Dir returns the session directory path.
func (s *Session) Dir() string { return s.dir }

// LogFile returns the session creation log, or nil when logging was not
// enabled.
func (s *Session) LogFile() *os.File { return s.logFile }

// Warnings returns the cleanup warnings recorded by Close.
func (s *Session) Warnings() []CleanupWarning {
	s.closeMu.Lock()
	defer s.closeMu.Unlock()
	return append([]CleanupWarning(nil), s.warnings...)
}

// Close releases the session: the log handle is closed and, unless Keep
// was set, the directory and everything under it is removed. Removal is
// best-effort; failures are recorded as warnings and reported through
// the logger, never returned. Close is idempotent.
func (s *Session) Close() error {
	s.closeMu.Lock()
	defer s.closeMu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	if s.logFile != nil {
		if err := s.logFile.Close(); err != nil {
			s.warn(CleanupWarning{Path: s.logFile.Name(), Err: err})
		}
	}
	if s.keep {
		return nil
	}
	if err := os.RemoveAll(s.dir); err != nil {
		s.warn(CleanupWarning{Path: s.dir, Err: err})
	}
	return nil
}

// warn records a cleanup warning. Callers hold closeMu.
func (s *Session) warn(w CleanupWarning) {
	s.warnings = append(s.warnings, w)
	s.logger.Warn().Err(w.Err).Str("path", w.Path).Msg("temp session cleanup failed")
}
