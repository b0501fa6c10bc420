package sync

import (
	"fmt"
	"strings"

	"github.com/Recipe-Web-App/system-operations-manager/internal/conflict"
	"github.com/Recipe-Web-App/system-operations-manager/internal/exitcode"
)

// Report aggregates the outcome of one sync run.
type Report struct {
	Direction conflict.Direction
	Results   []DualWriteResult
}

// Counts tallies results by outcome.
func (r Report) Counts() (synced, partial, failed, skipped, kept int) {
	for _, res := range r.Results {
		switch {
		case res.KonnectSkipped:
			skipped++
		case res.Failed():
			failed++
		case res.PartialSuccess():
			partial++
		case res.Resolution.Action == conflict.KeepTarget:
			kept++
		default:
			synced++
		}
	}
	return synced, partial, failed, skipped, kept
}

// Summary renders one line per result plus a totals line. A partial
// result is labeled explicitly so the operator knows the primary write
// landed and only the mirror needs attention.
func (r Report) Summary() string {
	var b strings.Builder
	for _, res := range r.Results {
		c := res.Resolution.Conflict
		fmt.Fprintf(&b, "%s/%s: %s\n", c.EntityType, c.EntityName, statusLine(res))
	}

	synced, partial, failed, skipped, kept := r.Counts()
	fmt.Fprintf(&b, "%d synced, %d partial, %d failed, %d skipped, %d kept", synced, partial, failed, skipped, kept)
	return b.String()
}

func statusLine(res DualWriteResult) string {
	switch {
	case res.KonnectSkipped:
		return "skipped"
	case res.Failed():
		return fmt.Sprintf("write failed: %v", res.GatewayResult.Err)
	case res.PartialSuccess():
		return fmt.Sprintf("primary updated, mirror failed: %v", res.KonnectError)
	case res.Resolution.Action == conflict.KeepTarget:
		return "kept target state"
	case res.KonnectNotConfigured:
		return "updated (no mirror configured)"
	default:
		return "synced"
	}
}

// ExitCode maps the run outcome to the process exit code: any primary
// write failure is a general error, a mirror-only failure is the partial
// sync code, otherwise success.
func (r Report) ExitCode() int {
	_, partial, failed, _, _ := r.Counts()
	switch {
	case failed > 0:
		return exitcode.GeneralError
	case partial > 0:
		return exitcode.PartialSync
	default:
		return exitcode.Success
	}
}
