package util

import "fmt"

// GetFragmentsWithConnection lowers per-download fragment parallelism as
// more downloads share the machine.
func GetFragmentsWithConnection(activeDownloads int, formatID string) string {

	concurrentFragments := 3

	switch {
	case activeDownloads <= 1:
		concurrentFragments = 4
	case activeDownloads <= 3:
		concurrentFragments = 3
	default:
		concurrentFragments = 2
	}

	switch normalizePreset(formatID) {
	case "144p", "240p", "360p", "480p":
		if concurrentFragments > 3 {
			concurrentFragments = 3
		}
	}

	return fmt.Sprintf("--concurrent-fragments=%d", concurrentFragments)
}
