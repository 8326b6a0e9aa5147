package temptrace

import (
	"strings"
	"testing"
	"time"

	"github.com/ospiem/temptrace/internal/caller"
)

func TestLogEntry(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, time.March, 5, 12, 30, 45, 0, time.UTC)
	frames := []caller.Frame{
		{Function: "github.com/acme/fetch.(*Client).Get", File: "/src/fetch/client.go", Line: 41},
		{Function: "main.main", File: "/src/cmd/main.go", Line: 12},
	}

	entry := logEntry(now, "/tmp/sess-ab12/fetch-Client-Get-x1y2z3w4", frames)
	lines := strings.Split(strings.TrimRight(entry, "\n"), "\n")

	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d:\n%s", len(lines), entry)
	}

	const tag = "[Tue Mar  5 12:30:45 2024]"
	want := tag + " File /tmp/sess-ab12/fetch-Client-Get-x1y2z3w4 created"
	if lines[0] != want {
		t.Errorf("first line = %q, want %q", lines[0], want)
	}

	for i, line := range lines[1:] {
		if !strings.HasPrefix(line, tag+"\t") {
			t.Errorf("frame line %d missing timestamp tag: %q", i, line)
		}
	}
	if !strings.Contains(lines[1], "fetch.(*Client).Get (/src/fetch/client.go:41)") {
		t.Errorf("frame not rendered: %q", lines[1])
	}
	if !strings.Contains(lines[2], "main.main (/src/cmd/main.go:12)") {
		t.Errorf("frame not rendered: %q", lines[2])
	}
}

func TestLogEntryLocalTimeRenderedAsUTC(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("UTC+3", 3*60*60)
	local := time.Date(2024, time.March, 5, 15, 30, 45, 0, loc)

	entry := logEntry(local, "/tmp/x", nil)
	if !strings.HasPrefix(entry, "[Tue Mar  5 12:30:45 2024]") {
		t.Errorf("timestamp not normalized to UTC: %q", entry)
	}
}

func TestLogEntryEmptyFrameName(t *testing.T) {
	t.Parallel()

	entry := logEntry(time.Now(), "/tmp/x", []caller.Frame{{File: "??", Line: 0}})
	if !strings.Contains(entry, caller.Unknown) {
		t.Errorf("nameless frame not rendered as %s: %q", caller.Unknown, entry)
	}
}
