package uplift

import (
	"github.com/evelynqian/causallift/pkg/data"
	"github.com/evelynqian/causallift/pkg/stats"
)

// ObservedSummary describes the historical data of one partition before any
// model is involved. Rates are NaN when their segment is empty.
type ObservedSummary struct {
	Partition         data.Partition
	Samples           int
	TreatedSamples    int
	TreatmentFraction float64
	OutcomeRate       float64
	TreatedRate       float64 // P(outcome | treated)
	UntreatedRate     float64 // P(outcome | untreated)
	ObservedUplift    float64 // TreatedRate - UntreatedRate
}

// Summarize computes the observed summary of every partition present in t.
func Summarize(t *data.Table, colTreatment, colOutcome string) []ObservedSummary {
	var out []ObservedSummary
	for _, p := range t.Partitions() {
		var all, treated, untreated []float64
		for _, i := range t.PartitionRows(p) {
			y := t.Value(i, colOutcome)
			all = append(all, y)
			switch tr := t.Value(i, colTreatment); {
			case Treated.is(tr):
				treated = append(treated, y)
			case Untreated.is(tr):
				untreated = append(untreated, y)
			}
		}
		s := ObservedSummary{
			Partition:      p,
			Samples:        len(all),
			TreatedSamples: len(treated),
			OutcomeRate:    stats.Rate(all),
			TreatedRate:    stats.Rate(treated),
			UntreatedRate:  stats.Rate(untreated),
		}
		s.TreatmentFraction = stats.Ratio(float64(len(treated)), float64(len(all)))
		s.ObservedUplift = s.TreatedRate - s.UntreatedRate
		out = append(out, s)
	}
	return out
}
