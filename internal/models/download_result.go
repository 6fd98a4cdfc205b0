package models

// ResourceKind identifies one downloadable resource of a session.
type ResourceKind string

const (
	KindVideo       ResourceKind = "video"
	KindTranscript  ResourceKind = "transcript"
	KindSampleCode  ResourceKind = "sample_code"
	KindCodeSamples ResourceKind = "code_samples"
	KindWebVTT      ResourceKind = "webvtt"
)

// AllResourceKinds lists every kind the orchestrator reports on, in display order.
var AllResourceKinds = []ResourceKind{
	KindVideo,
	KindTranscript,
	KindSampleCode,
	KindCodeSamples,
	KindWebVTT,
}

// ResourceState is the terminal state a resource kind reached.
type ResourceState int

const (
	StateNotAvailable ResourceState = iota // the record has no data for this kind
	StateSucceeded
	StateFailed
)

// String returns the string representation of the state
func (s ResourceState) String() string {
	switch s {
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "not available"
	}
}

// ResourceOutcome is the terminal result for one resource kind.
// Paths holds the written file(s) on success (multi-file kinds list every
// file); Err holds the captured failure, never propagated as a panic or
// returned error from the orchestrator.
type ResourceOutcome struct {
	Kind  ResourceKind
	State ResourceState
	Paths []string
	Err   error
}

// DownloadResult maps every requested resource kind to its outcome.
// It is never partial: each kind the orchestrator was asked about has an entry.
type DownloadResult map[ResourceKind]ResourceOutcome

// Succeeded reports whether the given kind reached StateSucceeded.
func (r DownloadResult) Succeeded(kind ResourceKind) bool {
	outcome, ok := r[kind]
	return ok && outcome.State == StateSucceeded
}

// Failures returns the outcomes that terminated in StateFailed, in display order.
func (r DownloadResult) Failures() []ResourceOutcome {
	var failures []ResourceOutcome
	for _, kind := range AllResourceKinds {
		if outcome, ok := r[kind]; ok && outcome.State == StateFailed {
			failures = append(failures, outcome)
		}
	}
	return failures
}
