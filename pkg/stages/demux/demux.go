// Package demux implements the view demultiplexing stage.
package demux

import (
	"context"
	"fmt"

	"github.com/user/stereoshow/pkg/pipeline"
	"github.com/user/stereoshow/pkg/ports"
)

// Stage splits a multiview sample stream into per-view sequences.
type Stage struct {
	sink   ports.DebugSink
	logger ports.Logger
}

// NewStage creates a new demux stage.
func NewStage(sink ports.DebugSink, logger ports.Logger) *Stage {
	return &Stage{
		sink:   sink,
		logger: logger.WithComponent("demux"),
	}
}

// Execute drains the source and routes each pixel sample to the first view
// whose predicate matches its tags. Stream order is preserved within each view.
func (s *Stage) Execute(ctx context.Context, input pipeline.DemuxInput) (pipeline.DemuxResult, error) {
	if err := ctx.Err(); err != nil {
		return pipeline.DemuxResult{}, err
	}
	if input.Source == nil {
		return pipeline.DemuxResult{}, fmt.Errorf("demux: nil source")
	}

	result := pipeline.DemuxResult{
		Views: make(map[pipeline.ViewName]*pipeline.ViewSequence, len(input.Predicates)),
	}
	for _, p := range input.Predicates {
		if _, ok := result.Views[p.View]; !ok {
			result.Views[p.View] = pipeline.NewViewSequence(p.View)
		}
	}

	for {
		sample, ok, err := input.Source.Next()
		if err != nil {
			return result, fmt.Errorf("read sample %d: %w", result.Samples, err)
		}
		if !ok {
			break
		}
		result.Samples++

		view, matched := route(input.Predicates, sample.Tags)

		switch p := sample.Payload.(type) {
		case ports.PixelPayload:
			if !matched {
				result.Dropped++
				continue
			}
			seq := result.Views[view]
			if s.sink.Enabled() {
				if err := s.sink.SaveViewFrame(input.Name, string(view), seq.Len(), p.Image); err != nil {
					s.logger.Warn("Failed to save debug output: %v", err)
				}
			}
			seq.Append(p.Image)

		case ports.OpaquePayload:
			if matched {
				return result, &pipeline.UnexpectedSampleError{Ordinal: sample.Ordinal, Kind: p.Kind}
			}
			s.logger.Debug("Skipping %s sample at ordinal %d", p.Kind, sample.Ordinal)
			result.Skipped++

		default:
			return result, &pipeline.UnexpectedSampleError{Ordinal: sample.Ordinal, Kind: fmt.Sprintf("%T", sample.Payload)}
		}
	}

	for _, p := range input.Predicates {
		s.logger.Debug("View %s: %d frames", p.View, result.Views[p.View].Len())
	}
	s.logger.Debug("Demultiplexed %d samples (%d dropped, %d skipped)", result.Samples, result.Dropped, result.Skipped)

	return result, nil
}

// route returns the first view whose predicate matches tags.
func route(predicates []pipeline.ViewPredicate, tags ports.TagSet) (pipeline.ViewName, bool) {
	if len(tags) == 0 {
		return "", false
	}
	for _, p := range predicates {
		if p.Match != nil && p.Match(tags) {
			return p.View, true
		}
	}
	return "", false
}

var _ pipeline.Stage[pipeline.DemuxInput, pipeline.DemuxResult] = (*Stage)(nil)
