package courtroom

import (
	"sort"

	"github.com/ParthRana1023/AI-Courtroom-sub001/models"
)

// MergeTranscript combines the two argument branches into one transcript
// ordered by timestamp ascending. The sort is stable: entries with equal
// timestamps keep their relative order within their original branch, with
// plaintiff entries ahead of defendant entries only because the plaintiff
// branch is concatenated first. No entry is dropped or duplicated; the
// result length is always len(plaintiff)+len(defendant).
func MergeTranscript(plaintiff, defendant []models.Argument) []models.Argument {
	merged := make([]models.Argument, 0, len(plaintiff)+len(defendant))
	merged = append(merged, plaintiff...)
	merged = append(merged, defendant...)

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Timestamp < merged[j].Timestamp
	})
	return merged
}
