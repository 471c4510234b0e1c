// Package workflow implements the record lifecycle: submission, validation
// review, edit-resubmit, and the Lead conversion chain. Logs are append-only
// text: every mutation adds one timestamped line and never rewrites history.
package workflow

import (
	"fmt"
	"time"
)

// datestampLayout is the display-time format used across status and revision
// logs, kept identical to the historical data so old and new lines read the
// same.
const datestampLayout = "02/01/2006 15:04"

// Datestamp formats an instant for log lines and record display times.
func Datestamp(t time.Time) string {
	return t.Format(datestampLayout)
}

// appendLine adds one datestamped line to a log, preserving existing lines
// verbatim. An empty log gets no leading newline.
func appendLine(log string, now time.Time, line string) string {
	entry := fmt.Sprintf("%s: %s", Datestamp(now), line)
	if log == "" {
		return entry
	}
	return log + "\n" + entry
}
