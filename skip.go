package temptrace

import (
	"fmt"
	"reflect"
	"runtime"
	"strings"
)

// A SkipSet holds fully-qualified function names whose stack frames are
// skipped during caller attribution. Helpers that merely forward file
// requests register themselves so files get named after the logical
// requester, not the forwarding helper.
//
// A SkipSet is meant to be populated during initialization and treated
// as read-only afterwards; it is then safe for concurrent readers.
type SkipSet struct {
	names map[string]struct{}
}

// NewSkipSet returns an empty SkipSet.
func NewSkipSet() *SkipSet {
	return &SkipSet{names: make(map[string]struct{})}
}

// Register adds a fully-qualified function name, e.g.
// "github.com/acme/fetch.download" or "github.com/acme/fetch.(*Client).Get".
func (s *SkipSet) Register(name string) {
	s.names[name] = struct{}{}
}

// RegisterFunc adds fn by resolving its fully-qualified name via
// reflection. fn must be a func value; method values are accepted.
func (s *SkipSet) RegisterFunc(fn any) error {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func {
		return fmt.Errorf("registering skip entry: %T is not a func", fn)
	}
	f := runtime.FuncForPC(v.Pointer())
	if f == nil {
		return fmt.Errorf("registering skip entry: no function at %#x", v.Pointer())
	}
	// Method values resolve to a generated wrapper named after the
	// method with an "-fm" suffix; frames show the method itself.
	s.Register(strings.TrimSuffix(f.Name(), "-fm"))
	return nil
}

// Contains reports whether name is registered.
func (s *SkipSet) Contains(name string) bool {
	if s == nil {
		return false
	}
	_, ok := s.names[name]
	return ok
}

// defaultSkip is the process-wide skip set used by sessions that do not
// carry their own. Populate it from init functions.
var defaultSkip = NewSkipSet()

// Register adds a fully-qualified function name to the process-wide
// skip set.
func Register(name string) { defaultSkip.Register(name) }

// RegisterFunc adds fn to the process-wide skip set. See
// (*SkipSet).RegisterFunc.
func RegisterFunc(fn any) error { return defaultSkip.RegisterFunc(fn) }
