package reporting

import (
	"strconv"
	"strings"

	"weni/internal/api"
)

// Codes sent by the server for test case lifecycle events.
const (
	CodeTestRunning   = "TEST_CASE_RUNNING"
	CodeTestCompleted = "TEST_CASE_COMPLETED"
)

const unknownTestError = "Unknown error while running test"

// TestRow is the latest known state of one test case.
type TestRow struct {
	Name     string
	Status   int
	Response any
	Code     string
}

// Completed reports whether the row reached TEST_CASE_COMPLETED.
func (r TestRow) Completed() bool {
	return r.Code == CodeTestCompleted
}

// TestRecord is one verbose entry, kept for every test case event.
type TestRecord struct {
	TestName string
	Status   int
	Response any
	Logs     string
}

// Notice is a message that is shown on its own rather than as a row.
type Notice struct {
	Message   string
	RequestID string
}

// String renders the notice, with the request id on its own line.
func (n Notice) String() string {
	if n.RequestID == "" {
		return n.Message
	}
	return n.Message + "\nRequest ID: " + n.RequestID
}

// TestUpdate describes what a single event changed.
type TestUpdate struct {
	// RowChanged is true when a row was created or overwritten.
	RowChanged bool
	// Notice is set when the event should be shown as a standalone message.
	Notice *Notice
}

// testCaseData is the data payload of a test case event. Fields are
// loosely typed so a float status or a list of log lines still yields a
// row.
type testCaseData struct {
	TestCase   any `json:"test_case"`
	StatusCode any `json:"test_status_code"`
	Response   any `json:"test_response"`
	Logs       any `json:"logs"`
}

func (d testCaseData) name() string {
	if d.TestCase == nil {
		return ""
	}
	return stringify(d.TestCase)
}

func (d testCaseData) status() int {
	switch v := d.StatusCode.(type) {
	case float64:
		return int(v)
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0
		}
		return int(n)
	}
	return 0
}

func (d testCaseData) logs() string {
	if d.Logs == nil {
		return ""
	}
	lines, ok := d.Logs.([]any)
	if !ok {
		return stringify(d.Logs)
	}
	parts := make([]string, 0, len(lines))
	for _, line := range lines {
		parts = append(parts, stringify(line))
	}
	return strings.Join(parts, "\n")
}

// TestRun is the result state of one test-run stream: an ordered set of
// rows keyed by test case name. The caller owns it for the duration of a
// session and discards it afterwards.
type TestRun struct {
	tool    string
	verbose bool
	rows    []TestRow
	index   map[string]int
	records []TestRecord
}

// NewTestRun creates an empty result set for tool.
func NewTestRun(tool string, verbose bool) *TestRun {
	return &TestRun{
		tool:    tool,
		verbose: verbose,
		index:   make(map[string]int),
	}
}

// Apply consumes one event. Events for a known test case overwrite its
// row in place; the last event wins regardless of code order. Failure
// events and unrecognized codes never touch rows and never end the run.
func (r *TestRun) Apply(event api.Event) TestUpdate {
	if !event.Success {
		message := event.Message
		if message == "" {
			return TestUpdate{Notice: &Notice{Message: unknownTestError}}
		}
		return TestUpdate{Notice: &Notice{Message: message, RequestID: event.RequestID}}
	}

	if event.Code != CodeTestRunning && event.Code != CodeTestCompleted {
		if strings.TrimSpace(event.Message) == "" {
			return TestUpdate{}
		}
		return TestUpdate{Notice: &Notice{Message: event.Message}}
	}

	var data testCaseData
	if err := event.DecodeData(&data); err != nil {
		return TestUpdate{Notice: &Notice{Message: "Malformed test case event: " + err.Error(), RequestID: event.RequestID}}
	}

	if r.verbose {
		r.records = append(r.records, TestRecord{
			TestName: data.name(),
			Status:   data.status(),
			Response: data.Response,
			Logs:     data.logs(),
		})
	}

	row := TestRow{
		Name:     data.name(),
		Status:   data.status(),
		Response: data.Response,
		Code:     event.Code,
	}
	if i, ok := r.index[row.Name]; ok {
		r.rows[i] = row
	} else {
		r.index[row.Name] = len(r.rows)
		r.rows = append(r.rows, row)
	}
	return TestUpdate{RowChanged: true}
}

// Tool returns the name of the tool under test.
func (r *TestRun) Tool() string {
	return r.tool
}

// Rows returns a copy of the rows in first-seen order.
func (r *TestRun) Rows() []TestRow {
	rows := make([]TestRow, len(r.rows))
	copy(rows, r.rows)
	return rows
}

// Records returns the verbose records in arrival order. Empty unless the
// run was created in verbose mode.
func (r *TestRun) Records() []TestRecord {
	records := make([]TestRecord, len(r.records))
	copy(records, r.records)
	return records
}

// Snapshot returns the renderable state of the run.
func (r *TestRun) Snapshot() Snapshot {
	return TakeSnapshot(r.tool, r.rows)
}
