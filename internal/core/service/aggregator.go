package service

import (
	"sort"

	"github.com/olusolaa/oneroster-parity/internal/core/domain"
)

// DefaultGroupLimit is how many differences of one kind are shown before the
// rest are summarized as a count.
const DefaultGroupLimit = 10

// Aggregator collects endpoint results in completion order and produces the
// run report.
type Aggregator struct {
	report domain.RunReport
	done   bool
}

func NewAggregator(mode domain.Mode, datasetVersion, labelA, labelB string) *Aggregator {
	return &Aggregator{report: domain.RunReport{
		Mode:           mode,
		DatasetVersion: datasetVersion,
		LabelA:         labelA,
		LabelB:         labelB,
	}}
}

// Add appends one endpoint result. Results added after Finalize are ignored.
func (a *Aggregator) Add(result domain.EndpointResult) {
	if a.done {
		return
	}
	a.report.Results = append(a.report.Results, result)
}

// Finalize computes the run totals. It may be called more than once; later
// calls return the same report.
func (a *Aggregator) Finalize() domain.RunReport {
	if a.done {
		return a.report
	}
	a.done = true

	s := domain.Summary{
		Total:              len(a.report.Results),
		KindCounts:         map[domain.DiffKind]int{},
		ColumnDiffEndpoint: []string{},
	}
	for _, r := range a.report.Results {
		switch {
		case r.Identical:
			s.Identical++
		case r.Status == domain.StatusError || r.Status == domain.StatusColumnDetectionFailed:
			s.Errors++
		default:
			s.Different++
		}
		for k, n := range r.KindCounts {
			s.KindCounts[k] += n
		}
		s.BooleanFormatDiffs += r.BooleanFormatDiffs
		if r.HasColumnDifferences() {
			s.ColumnDiffEndpoint = append(s.ColumnDiffEndpoint, r.Endpoint)
		}
	}
	a.report.Summary = s
	return a.report
}

// DifferenceGroup is the differences of one kind with only the first few kept.
type DifferenceGroup struct {
	Kind  domain.DiffKind
	Total int
	Shown []domain.Difference
}

// Hidden is the number of differences counted but not shown.
func (g DifferenceGroup) Hidden() int {
	return g.Total - len(g.Shown)
}

// GroupDifferences groups diffs by kind in order of first appearance, keeping
// at most limit per group. Totals always reflect every difference.
func GroupDifferences(diffs []domain.Difference, limit int) []DifferenceGroup {
	if limit <= 0 {
		limit = DefaultGroupLimit
	}
	index := map[domain.DiffKind]int{}
	var groups []DifferenceGroup
	for _, d := range diffs {
		i, ok := index[d.Kind]
		if !ok {
			i = len(groups)
			index[d.Kind] = i
			groups = append(groups, DifferenceGroup{Kind: d.Kind})
		}
		groups[i].Total++
		if len(groups[i].Shown) < limit {
			groups[i].Shown = append(groups[i].Shown, d)
		}
	}
	return groups
}

// SortedKinds returns the keys of a kind count map in a stable order.
func SortedKinds(counts map[domain.DiffKind]int) []domain.DiffKind {
	kinds := make([]domain.DiffKind, 0, len(counts))
	for k := range counts {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}
