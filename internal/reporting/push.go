package reporting

import (
	"weni/internal/api"
)

// unknownPushError is reported for a failure event that carries no message.
const unknownPushError = "Unknown error during agent push"

// ProgressSink is a bounded 0-100 progress indicator.
type ProgressSink interface {
	// Advance moves the indicator forward by delta points.
	Advance(delta float64)
	// Label replaces the text shown next to the indicator.
	Label(text string)
}

// PushProgress maps push-stream events onto a 0-100 scale. Progress
// values in events are fractions in [0, 1]; the aggregator remembers the
// last one and forwards only the difference.
type PushProgress struct {
	sink       ProgressSink
	cumulative float64
	events     int
}

// NewPushProgress starts a session at zero progress.
func NewPushProgress(sink ProgressSink) *PushProgress {
	return &PushProgress{sink: sink}
}

// Apply consumes one event and returns the delta that was forwarded to the
// sink. A failure event ends the session with an *api.Error built from the
// event's message, data and request id.
func (p *PushProgress) Apply(event api.Event) (float64, error) {
	p.events++

	if !event.Success {
		message := event.Message
		if message == "" {
			message = unknownPushError
		}
		return 0, api.NewError(message, 0, event.DataValue(), event.RequestID)
	}

	if event.Message != "" {
		// Trailing period keeps the last character from being clipped by the bar.
		p.sink.Label(event.Message + ".")
	}

	if !event.HasProgress() {
		return 0, nil
	}

	progress := *event.Progress
	delta := (progress - p.cumulative) * 100
	p.sink.Advance(delta)
	p.cumulative = progress
	return delta, nil
}

// Cumulative returns the last progress fraction seen in this session.
func (p *PushProgress) Cumulative() float64 {
	return p.cumulative
}

// Events returns how many events have been applied.
func (p *PushProgress) Events() int {
	return p.events
}
