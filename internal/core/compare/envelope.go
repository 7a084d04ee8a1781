package compare

import (
	"fmt"

	"github.com/olusolaa/oneroster-parity/internal/core/domain"
	"github.com/olusolaa/oneroster-parity/internal/core/normalize"
	apperrors "github.com/olusolaa/oneroster-parity/internal/errors"
)

// MaxItemDiffs bounds the element-level explanations computed per endpoint.
const MaxItemDiffs = 3

// EnvelopeComparison is the outcome of comparing two response envelopes.
type EnvelopeComparison struct {
	Status    domain.ResultStatus
	Identical bool
	CountA    int
	CountB    int
	Detail    domain.EnvelopeDetail
	// SampleA and SampleB are the first unredacted items when both
	// collections are non-empty and the same length.
	SampleA domain.Value
	SampleB domain.Value
}

// CompareEnvelopes parses two raw envelopes, redacts the items of the named
// collection and compares the documents. A document that is not JSON is an
// error; a missing collection on either side is a structure mismatch.
func (d *Differ) CompareEnvelopes(rawA, rawB []byte, property string) (EnvelopeComparison, error) {
	docA, err := normalize.ParseJSONBytes(rawA)
	if err != nil {
		return EnvelopeComparison{}, apperrors.Wrap(err, apperrors.CodeParseError, "side A envelope is not valid JSON")
	}
	docB, err := normalize.ParseJSONBytes(rawB)
	if err != nil {
		return EnvelopeComparison{}, apperrors.Wrap(err, apperrors.CodeParseError, "side B envelope is not valid JSON")
	}
	return d.CompareEnvelopeValues(docA, docB, property), nil
}

// CompareEnvelopeValues is CompareEnvelopes over already parsed documents.
func (d *Differ) CompareEnvelopeValues(docA, docB domain.Value, property string) EnvelopeComparison {
	res := EnvelopeComparison{Detail: domain.EnvelopeDetail{Property: property}}

	collA, collB := docA.Field(property), docB.Field(property)
	if collA.Kind == domain.KindAbsent || collB.Kind == domain.KindAbsent {
		res.Status = domain.StatusStructureMismatch
		res.Detail.Differences = []domain.Difference{{
			Path: fmt.Sprintf("%s.%s", rootPath, property),
			Kind: structureKind(collA, collB),
			A:    collA,
			B:    collB,
		}}
		return res
	}
	res.CountA, res.CountB = len(collA.Arr), len(collB.Arr)
	if res.CountA > 0 && res.CountA == res.CountB {
		res.SampleA, res.SampleB = collA.Arr[0], collB.Arr[0]
	}

	redA := RedactCollection(docA, property)
	redB := RedactCollection(docB, property)
	if redA.Equal(redB) {
		res.Status = domain.StatusSuccess
		res.Identical = true
		return res
	}

	res.Status = domain.StatusDifferent
	res.Detail.Differences = d.DiffValues(redA, redB, "")

	itemsA, itemsB := redA.Field(property), redB.Field(property)
	if itemsA.Kind != domain.KindArray || itemsB.Kind != domain.KindArray || len(itemsA.Arr) != len(itemsB.Arr) {
		return res
	}
	for i := range itemsA.Arr {
		a, b := itemsA.Arr[i], itemsB.Arr[i]
		if a.Equal(b) {
			continue
		}
		res.Detail.DifferentItems++
		if res.Detail.FirstFailed == nil {
			res.Detail.FirstFailed = &domain.FailedItem{Index: i, A: a, B: b}
		}
		if len(res.Detail.ItemDiffs) < MaxItemDiffs {
			res.Detail.ItemDiffs = append(res.Detail.ItemDiffs, domain.ItemDifference{
				Index:       i,
				Differences: d.DiffValues(a, b, fmt.Sprintf("%s[%d]", property, i)),
			})
		}
	}
	return res
}

func structureKind(a, b domain.Value) domain.DiffKind {
	if a.Kind == domain.KindAbsent && b.Kind != domain.KindAbsent {
		return domain.DiffMissingInA
	}
	return domain.DiffMissingInB
}
