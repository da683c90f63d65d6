package cli

import (
	"fmt"
	"os"

	"github.com/talktotext/talktotext/internal/metrics"
)

// printStats displays request timing for this invocation on stderr.
func printStats(snap metrics.Snapshot) {
	w := os.Stderr
	fmt.Fprintf(w, "\nRequest Statistics (%.1fs)\n", snap.UptimeSeconds)
	fmt.Fprintf(w, "═══════════════════════════════\n")
	if len(snap.Operations) == 0 {
		fmt.Fprintln(w, "No requests made.")
		return
	}
	for _, op := range snap.Operations {
		fmt.Fprintf(w, "%-10s calls %d, failed %d\n", op.Name, op.Count, op.Failures)
		fmt.Fprintf(w, "           time: avg %.1fms, min %dms, max %dms\n", op.AvgTimeMs, op.MinTimeMs, op.MaxTimeMs)
	}
}
