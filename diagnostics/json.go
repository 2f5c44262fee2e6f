package diagnostics

import (
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"

	"github.com/vkngwrapper/suballoc"
)

// WriteSummary writes a JSON object describing stats into an
// already-open jwriter.ObjectState, mirroring the block-summary headers
// the teacher's metadata package writes for each managed block.
func WriteSummary(json jwriter.ObjectState, stats *suballoc.DetailedStatistics) {
	json.Name("BlockCount").Int(stats.BlockCount)
	json.Name("TotalBytes").Int(int(stats.BlockBytes))
	json.Name("UsedBytes").Int(int(stats.AllocationBytes))
	json.Name("UnusedBytes").Int(int(stats.BlockBytes - stats.AllocationBytes))
	json.Name("Allocations").Int(stats.AllocationCount)
	json.Name("UnusedRanges").Int(stats.UnusedRangeCount)
}

// Summarize returns a standalone JSON document describing stats.
func Summarize(stats *suballoc.DetailedStatistics) ([]byte, error) {
	writer := jwriter.NewWriter()
	obj := writer.Object()
	WriteSummary(obj, stats)
	obj.End()

	return writer.Bytes(), writer.Error()
}
