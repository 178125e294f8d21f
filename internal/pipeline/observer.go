package pipeline

import "github.com/refsift/refsift/internal/record"

// Observer receives per-stage progress callbacks. Any field may be nil;
// the pipeline works identically with no observer attached. Callbacks
// for a single document arrive in order, but batch runs invoke them
// from multiple goroutines, one per in-flight document.
type Observer struct {
	DocumentStarted  func(path string)
	SectionFound     func(path string, quality float64)
	SectionNotFound  func(path string)
	EntriesParsed    func(path string, count int)
	RecordEnriched   func(path string, ordinal int, source record.Source)
	EnrichmentFailed func(path string, ordinal int, err error)
	DocumentDone     func(res Result)
}

func (o *Observer) documentStarted(path string) {
	if o != nil && o.DocumentStarted != nil {
		o.DocumentStarted(path)
	}
}

func (o *Observer) sectionFound(path string, quality float64) {
	if o != nil && o.SectionFound != nil {
		o.SectionFound(path, quality)
	}
}

func (o *Observer) sectionNotFound(path string) {
	if o != nil && o.SectionNotFound != nil {
		o.SectionNotFound(path)
	}
}

func (o *Observer) entriesParsed(path string, count int) {
	if o != nil && o.EntriesParsed != nil {
		o.EntriesParsed(path, count)
	}
}

func (o *Observer) recordEnriched(path string, ordinal int, source record.Source) {
	if o != nil && o.RecordEnriched != nil {
		o.RecordEnriched(path, ordinal, source)
	}
}

func (o *Observer) enrichmentFailed(path string, ordinal int, err error) {
	if o != nil && o.EnrichmentFailed != nil {
		o.EnrichmentFailed(path, ordinal, err)
	}
}

func (o *Observer) documentDone(res Result) {
	if o != nil && o.DocumentDone != nil {
		o.DocumentDone(res)
	}
}
