package temptrace

import (
	"fmt"
	"strings"
	"time"

	"github.com/ospiem/temptrace/internal/caller"
)

// logEntry composes one creation-log entry. Every line, including each
// stack frame, carries the same bracketed UTC timestamp so the log stays
// greppable by time:
//
//	[Mon Jan  2 15:04:05 2006] File /tmp/app-x1/fetch-Get-ab12cd34 created
//	[Mon Jan  2 15:04:05 2006]	github.com/acme/fetch.(*Client).Get (/src/fetch/client.go:41)
//	...
func logEntry(now time.Time, path string, frames []caller.Frame) string {
	tag := "[" + now.UTC().Format(time.ANSIC) + "]"
	var b strings.Builder
	fmt.Fprintf(&b, "%s File %s created\n", tag, path)
	for _, fr := range frames {
		fn := fr.Function
		if fn == "" {
			fn = caller.Unknown
		}
		fmt.Fprintf(&b, "%s\t%s (%s:%d)\n", tag, fn, fr.File, fr.Line)
	}
	return b.String()
}
