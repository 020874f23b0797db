package reporting

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Status glyphs used in the results table.
const (
	GlyphPassed  = "✅"
	GlyphFailed  = "❌"
	GlyphPending = "⏳"
)

// waitingText is shown for a test case that has no response yet.
const waitingText = "waiting..."

// responsePath is the nested path to the text body of a tool response.
var responsePath = []string{"functionResponse", "responseBody", "TEXT"}

// SnapshotRow is one rendered table row.
type SnapshotRow struct {
	Name     string
	Status   string
	Response string
}

// Snapshot is an immutable, renderable view of a test run.
type Snapshot struct {
	Title string
	Rows  []SnapshotRow
}

// Empty reports whether there is nothing to render yet.
func (s Snapshot) Empty() bool {
	return len(s.Rows) == 0
}

// TakeSnapshot renders rows without modifying them. It can be called any
// number of times at any point of a session.
func TakeSnapshot(tool string, rows []TestRow) Snapshot {
	snapshot := Snapshot{
		Title: fmt.Sprintf("Test Results for %s", tool),
		Rows:  make([]SnapshotRow, 0, len(rows)),
	}
	for _, row := range rows {
		snapshot.Rows = append(snapshot.Rows, SnapshotRow{
			Name:     row.Name,
			Status:   StatusGlyph(row),
			Response: FormatResponse(row.Response),
		})
	}
	return snapshot
}

// StatusGlyph returns the pass/fail glyph for completed rows and an
// hourglass for rows still running.
func StatusGlyph(row TestRow) string {
	if !row.Completed() {
		return GlyphPending
	}
	if row.Status == http.StatusOK {
		return GlyphPassed
	}
	return GlyphFailed
}

// FormatResponse extracts the text body from a tool response, descending
// response.functionResponse.responseBody.TEXT.body. When a level is
// missing it returns the deepest value reached. It accepts any input and
// never panics.
func FormatResponse(result any) string {
	if isBlank(result) {
		return waitingText
	}

	envelope, ok := result.(map[string]any)
	if !ok {
		return stringify(result)
	}
	current, ok := envelope["response"]
	if !ok {
		return stringify(result)
	}

	for _, key := range responsePath {
		object, ok := current.(map[string]any)
		if !ok {
			return stringify(current)
		}
		next, ok := object[key]
		if !ok || isBlank(next) {
			return stringify(current)
		}
		current = next
	}

	text, ok := current.(map[string]any)
	if !ok {
		return stringify(current)
	}
	body, ok := text["body"]
	if !ok {
		return ""
	}
	return stringify(body)
}

func isBlank(v any) bool {
	switch value := v.(type) {
	case nil:
		return true
	case string:
		return value == ""
	case map[string]any:
		return len(value) == 0
	case []any:
		return len(value) == 0
	}
	return false
}

// stringify renders strings as-is and everything else as compact JSON.
// encoding/json sorts map keys, so output is stable across runs.
func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	encoded, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(encoded)
}
