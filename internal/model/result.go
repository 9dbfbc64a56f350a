package model

// PipelineResult is the final per-job outcome. Exactly one result exists per
// submitted item, in submission order. Either Path is set (success) or Err
// carries the failure reason. Job is nil when the item failed before a job
// was ever created (resolution or selection stage); URL is always set.
type PipelineResult struct {
	URL  string
	Job  *DownloadJob
	Path string
	Err  error
}

// Succeeded reports whether the job finished with a final file in place.
func (r PipelineResult) Succeeded() bool {
	return r.Err == nil
}

// Summary aggregates terminal outcomes over a result set.
type Summary struct {
	Total     int
	Succeeded int
	Failed    int
}

// Summarize counts outcomes over results.
func Summarize(results []PipelineResult) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		if r.Succeeded() {
			s.Succeeded++
		} else {
			s.Failed++
		}
	}
	return s
}
