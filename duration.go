package researchbridge

import (
	"fmt"
	"math"
	"strings"
)

// encodeDuration renders elapsed seconds as a compact ISO-8601 duration.
// Sub-second precision is discarded; a zero duration renders as "PT0S" so the
// suffix is never empty.
func encodeDuration(seconds float64) string {
	total := int64(math.Floor(seconds))
	if total < 0 {
		total = 0
	}

	hours := total / 3600
	minutes := (total % 3600) / 60
	secs := total % 60

	var b strings.Builder
	b.WriteString("PT")
	if hours > 0 {
		fmt.Fprintf(&b, "%dH", hours)
	}
	if minutes > 0 {
		fmt.Fprintf(&b, "%dM", minutes)
	}
	if secs > 0 || (hours == 0 && minutes == 0) {
		fmt.Fprintf(&b, "%dS", secs)
	}
	return b.String()
}
