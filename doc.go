// Package temptrace manages temporary directories whose files are named
// after the code that asked for them.
//
// A Session owns one temporary directory, created up front and removed
// when the session is closed. Each file created through the session is
// named after the calling function; helpers that merely forward file
// requests can register themselves in a skip set so the name credits
// the logical requester instead:
//
//	func init() {
//		temptrace.RegisterFunc(scratchFile)
//	}
//
//	// scratchFile forwards to Create, so files it makes are named
//	// after scratchFile's caller.
//	func scratchFile(s *temptrace.Session) (*temptrace.File, error) {
//		return s.Create(temptrace.FileOptions{Suffix: ".tmp"})
//	}
//
// Sessions can keep an append-only creation log recording a timestamped
// stack trace for every file made through them, which makes it cheap to
// answer "what left this file here" long after the fact.
package temptrace
