package api

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// maxLineSize caps one NDJSON line. Test responses can embed large payloads.
const maxLineSize = 8 * 1024 * 1024

// Event is one decoded line of an NDJSON response stream.
type Event struct {
	Success   bool            `json:"success"`
	Message   string          `json:"message,omitempty"`
	Progress  *float64        `json:"progress,omitempty"`
	Code      string          `json:"code,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	RequestID string          `json:"request_id,omitempty"`
}

// HasProgress reports whether the event carried a progress value.
func (e Event) HasProgress() bool {
	return e.Progress != nil
}

// DataValue returns the data payload as any JSON value, or nil when it is
// absent or unparseable.
func (e Event) DataValue() any {
	if len(e.Data) == 0 {
		return nil
	}
	var data any
	if err := json.Unmarshal(e.Data, &data); err != nil {
		return nil
	}
	return data
}

// DecodeData unmarshals the data payload into v. Absent data is not an error.
func (e Event) DecodeData(v any) error {
	if len(e.Data) == 0 || bytes.Equal(bytes.TrimSpace(e.Data), []byte("null")) {
		return nil
	}
	return json.Unmarshal(e.Data, v)
}

// Decoder reads Events from an NDJSON stream one line at a time without
// buffering the whole body. It is forward-only and not safe for
// concurrent use.
type Decoder struct {
	scanner *bufio.Scanner
	line    int
}

// NewDecoder returns a decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &Decoder{scanner: scanner}
}

// Next returns the next event. Blank lines are skipped. It returns io.EOF
// once the stream is exhausted. A line that is not a JSON object ends the
// stream with an *Error; there is no per-line recovery.
func (d *Decoder) Next() (Event, error) {
	for d.scanner.Scan() {
		d.line++
		line := bytes.TrimSpace(d.scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var event Event
		if err := json.Unmarshal(line, &event); err != nil {
			decodeErr := NewError(fmt.Sprintf("malformed stream line %d: %v", d.line, err), 0, nil, "")
			decodeErr.cause = err
			return Event{}, decodeErr
		}
		return event, nil
	}

	if err := d.scanner.Err(); err != nil {
		return Event{}, fmt.Errorf("reading stream: %w", err)
	}
	return Event{}, io.EOF
}
