package temptrace

import "fmt"

// AllocationError reports that a unique temporary file or directory
// could not be created.
type AllocationError struct {
	Dir      string // directory the allocation was attempted in
	Template string // name template in use
	Err      error
}

func (e *AllocationError) Error() string {
	return fmt.Sprintf("allocating %q in %s: %v", e.Template, e.Dir, e.Err)
}

func (e *AllocationError) Unwrap() error { return e.Err }

// PathError reports that a requested subdirectory could not be created.
type PathError struct {
	Path string
	Err  error
}

func (e *PathError) Error() string {
	return fmt.Sprintf("creating subdirectory %s: %v", e.Path, e.Err)
}

func (e *PathError) Unwrap() error { return e.Err }

// CleanupWarning records a best-effort teardown failure. Warnings are
// reported, never returned as errors.
type CleanupWarning struct {
	Path string
	Err  error
}

func (w CleanupWarning) String() string {
	return fmt.Sprintf("removing %s: %v", w.Path, w.Err)
}
