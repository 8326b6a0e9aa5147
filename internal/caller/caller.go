// Package caller discovers which function asked for a temporary file by
// walking the call stack, and turns frame names into filesystem-safe
// name templates.
package caller

import (
	"regexp"
	"runtime"
	"strings"
)

// Unknown is returned when no attributable frame can be found.
const Unknown = "UNKNOWN"

// placeholder is the trailing random-suffix run appended by Sanitize.
// The allocator replaces it with random characters; it must be at least
// four characters long.
const placeholder = "XXXXXXXX"

const maxDepth = 64

var unsafeRun = regexp.MustCompile(`\W+`)

// A Frame is one entry of a captured call stack.
type Frame struct {
	Function string
	File     string
	Line     int
}

// Attribute walks the active call stack starting callDepth frames above
// its own caller and returns the fully-qualified name of the first frame
// for which skip returns false. It returns Unknown when the stack is
// exhausted or a frame has no name.
func Attribute(skip func(name string) bool, callDepth int) string {
	pcs := make([]uintptr, maxDepth)
	// +2 skips runtime.Callers and Attribute itself.
	n := runtime.Callers(callDepth+2, pcs)
	if n == 0 {
		return Unknown
	}
	frames := runtime.CallersFrames(pcs[:n])
	for {
		fr, more := frames.Next()
		if fr.Function == "" {
			return Unknown
		}
		if skip == nil || !skip(fr.Function) {
			return fr.Function
		}
		if !more {
			return Unknown
		}
	}
}

// Stack captures the call stack starting callDepth frames above its own
// caller, outermost frame last.
func Stack(callDepth int) []Frame {
	pcs := make([]uintptr, maxDepth)
	n := runtime.Callers(callDepth+2, pcs)
	if n == 0 {
		return nil
	}
	frames := runtime.CallersFrames(pcs[:n])
	var out []Frame
	for {
		fr, more := frames.Next()
		out = append(out, Frame{Function: fr.Function, File: fr.File, Line: fr.Line})
		if !more {
			return out
		}
	}
}

// Sanitize turns a caller label into a unique-name template: the package
// path is trimmed to its last element, namespace separators and any other
// unsafe characters become "-", and a trailing placeholder run is appended
// for the allocator to expand.
//
//	Sanitize("github.com/acme/fetch.Download") == "fetch-Download-XXXXXXXX"
//	Sanitize("A::B::C") == "A-B-C-XXXXXXXX"
func Sanitize(label string) string {
	if i := strings.LastIndex(label, "/"); i >= 0 {
		label = label[i+1:]
	}
	label = strings.ReplaceAll(label, "::", "-")
	label = unsafeRun.ReplaceAllString(label, "-")
	label = strings.Trim(label, "-")
	if label == "" {
		label = Unknown
	}
	return label + "-" + placeholder
}
