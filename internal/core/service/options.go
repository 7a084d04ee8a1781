package service

import (
	"time"

	"github.com/olusolaa/oneroster-parity/internal/core/domain"
)

// DefaultSampleSize is how many differing rows keep their full detail.
const DefaultSampleSize = 3

// Options carries the run settings shared by both engines.
type Options struct {
	DatasetVersion  string
	RequestTimeout  time.Duration
	MaxDepth        int
	SampleSize      int
	ExcludedColumns []string
	TitleFields     []string
}

func (o Options) withDefaults() Options {
	if o.RequestTimeout <= 0 {
		o.RequestTimeout = DefaultRequestTimeout
	}
	if o.SampleSize <= 0 {
		o.SampleSize = DefaultSampleSize
	}
	if o.ExcludedColumns == nil {
		o.ExcludedColumns = domain.DefaultExcludedColumns
	}
	if len(o.TitleFields) == 0 {
		o.TitleFields = domain.DefaultTitleFields
	}
	return o
}

// ArtifactName is the name a raw envelope is saved under.
func ArtifactName(datasetVersion, label, endpoint string) string {
	return datasetVersion + "-" + label + "-" + endpoint + ".json"
}

func errorResult(endpoint string, mode domain.Mode, status domain.ResultStatus, err error) domain.EndpointResult {
	return domain.EndpointResult{
		Endpoint: endpoint,
		Mode:     mode,
		Status:   status,
		Err:      err,
	}
}
