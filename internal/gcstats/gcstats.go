// Package gcstats formats heap statistics for the CLI's -gc-stats flag.
package gcstats

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// Report is the subset of yl.HeapStats the CLI wants to print. It's
// duplicated here rather than importing the yl package's struct
// directly so this package stays usable from any embedder, not just
// cmd/yl.
type Report struct {
	Collections    int
	ObjectsFreed   int
	BytesAllocated int
	Threshold      int
}

// Format renders a Report as a short human-readable summary line.
func Format(r Report) string {
	return fmt.Sprintf(
		"gc: %d collection(s), %d object(s) freed, %s allocated (next collection at %s)",
		r.Collections, r.ObjectsFreed,
		humanize.Bytes(uint64(r.BytesAllocated)),
		humanize.Bytes(uint64(r.Threshold)),
	)
}
