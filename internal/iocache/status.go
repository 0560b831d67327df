package iocache

import (
	"fmt"

	"github.com/prpulse/prpulse/schema"
)

// PrintCacheStatus prints response-cache status information.
func PrintCacheStatus(status schema.CacheStatus) {
	fmt.Printf("Cache Backend: %s\n", status.Backend)
	fmt.Printf("Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	fmt.Printf("Total Entries: %d\n", status.TotalEntries)
	if status.TotalEntries > 0 {
		fmt.Printf("Last Entry: %s\n", status.LastEntryTime.Format("2006-01-02 15:04:05"))
		fmt.Printf("Oldest Entry: %s\n", status.OldestEntryTime.Format("2006-01-02 15:04:05"))
	}
	fmt.Printf("Table Size: %d bytes\n", status.TableSizeBytes)
}

// PrintRunStoreStatus prints run-history status information.
func PrintRunStoreStatus(status schema.RunStoreStatus) {
	fmt.Printf("Runs Backend: %s\n", status.Backend)
	fmt.Printf("Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	fmt.Printf("Total Runs: %d\n", status.TotalRuns)
}

// PrintRunHistory prints every recorded run in chronological order.
func PrintRunHistory(runs []schema.RunRecord) {
	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		return
	}
	for _, run := range runs {
		finished := "in progress"
		if !run.FinishedAt.IsZero() {
			finished = run.FinishedAt.Format("2006-01-02 15:04:05")
		}
		fmt.Printf("%d  %s/%s  window %s..%s  finished %s  PRs %d (assisted %d)\n",
			run.ID, run.Owner, run.Scope,
			run.PeriodStart.Format("2006-01-02"), run.PeriodEnd.Format("2006-01-02"),
			finished, run.TotalPRs, run.AssistedPRs)
	}
}
