package uplift

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/evelynqian/causallift/pkg/data"
	"github.com/evelynqian/causallift/pkg/stats"
)

// Column headers of the impact tables.
const (
	ColSamples          = "# samples"
	ColChosenWithout    = "# samples chosen without uplift model"
	ColObservedRate     = "observed conversion rate without uplift model"
	ColRecommendedCount = "# samples recommended by uplift model"
	ColPredictedRate    = "predicted conversion rate using uplift model"
	ColImprovement      = "predicted improvement rate"
)

// ImpactRow is one partition of an arm's simulation. Rates of an empty segment
// are NaN and its count is zero.
type ImpactRow struct {
	Partition        data.Partition
	ChosenWithout    int
	ObservedRate     float64
	RecommendedCount int
	PredictedRate    float64
	Improvement      float64
}

// ArmImpact is the simulation result of one arm, one row per partition.
type ArmImpact struct {
	Arm  Arm
	Rows []ImpactRow
}

// Row returns the row of partition p.
func (a *ArmImpact) Row(p data.Partition) (ImpactRow, bool) {
	for _, r := range a.Rows {
		if r.Partition == p {
			return r, true
		}
	}
	return ImpactRow{}, false
}

func (a *ArmImpact) String() string {
	var b strings.Builder
	tw := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", "partition", ColChosenWithout, ColObservedRate, ColRecommendedCount, ColPredictedRate, ColImprovement)
	for _, r := range a.Rows {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%d\t%s\t%s\n", r.Partition, r.ChosenWithout, rate(r.ObservedRate), r.RecommendedCount, rate(r.PredictedRate), rate(r.Improvement))
	}
	tw.Flush()
	return b.String()
}

// ImpactRecord is one partition of the aggregated impact table.
type ImpactRecord struct {
	Partition     data.Partition
	Samples       int
	ObservedRate  float64
	PredictedRate float64
	Improvement   float64
}

// ImpactTable compares, per partition, the observed baseline policy with the
// uplift model's recommendation over both arms.
type ImpactTable struct {
	Records []ImpactRecord
}

// Record returns the record of partition p.
func (t *ImpactTable) Record(p data.Partition) (ImpactRecord, bool) {
	for _, r := range t.Records {
		if r.Partition == p {
			return r, true
		}
	}
	return ImpactRecord{}, false
}

// Aggregate blends the treated and untreated simulations. Per partition the
// sample count is the sum of both arms' baseline counts. The observed rate is
// the average of the arms' observed rates weighted by their baseline counts,
// the predicted rate the average of the arms' predicted rates weighted by
// their recommended counts. An arm with a zero count does not take part, so
// its NaN rate never reaches the blend.
func Aggregate(treated, untreated *ArmImpact) *ImpactTable {
	out := &ImpactTable{}
	for _, p := range []data.Partition{data.Train, data.Test} {
		tr, okT := treated.Row(p)
		un, okU := untreated.Row(p)
		if !okT && !okU {
			continue
		}
		rec := ImpactRecord{
			Partition: p,
			Samples:   tr.ChosenWithout + un.ChosenWithout,
			ObservedRate: stats.WeightedMean(
				[]float64{tr.ObservedRate, un.ObservedRate},
				[]float64{float64(tr.ChosenWithout), float64(un.ChosenWithout)}),
			PredictedRate: stats.WeightedMean(
				[]float64{tr.PredictedRate, un.PredictedRate},
				[]float64{float64(tr.RecommendedCount), float64(un.RecommendedCount)}),
		}
		rec.Improvement = stats.Ratio(rec.PredictedRate, rec.ObservedRate)
		out.Records = append(out.Records, rec)
	}
	return out
}

// Write renders the table as aligned text.
func (t *ImpactTable) Write(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", "partition", ColSamples, ColObservedRate, ColPredictedRate, ColImprovement)
	for _, r := range t.Records {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n", r.Partition, r.Samples, rate(r.ObservedRate), rate(r.PredictedRate), rate(r.Improvement))
	}
	return tw.Flush()
}

func (t *ImpactTable) String() string {
	var b strings.Builder
	_ = t.Write(&b)
	return b.String()
}

func rate(v float64) string { return fmt.Sprintf("%.3f", v) }
