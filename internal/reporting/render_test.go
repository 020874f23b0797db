package reporting

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderTable_ContainsRows(t *testing.T) {
	snapshot := TakeSnapshot("get_order", []TestRow{
		{Name: "order found", Status: 200, Code: CodeTestCompleted, Response: "Shipped"},
		{Name: "order missing", Status: 404, Code: CodeTestCompleted, Response: "Not found"},
		{Name: "slow order", Code: CodeTestRunning},
	})

	out := RenderTable(snapshot, 0)
	assert.Contains(t, out, "Test Results for get_order")
	assert.Contains(t, out, "Test Name")
	assert.Contains(t, out, "order found")
	assert.Contains(t, out, GlyphPassed)
	assert.Contains(t, out, GlyphFailed)
	assert.Contains(t, out, GlyphPending)
	assert.Contains(t, out, "waiting...")
}

func TestSingleLine(t *testing.T) {
	assert.Equal(t, "a b c", singleLine("a\nb\t c", 20))
	assert.Equal(t, 5, len([]rune(singleLine("abcdefghij", 5))))
}

func TestProgressBar_TracksPointsAndLabel(t *testing.T) {
	var buf bytes.Buffer
	bar := NewProgressBar(&buf, "Pushing agents")

	bar.Advance(50)
	bar.Label("Processing.")
	bar.Advance(50)
	bar.Finish()

	assert.InDelta(t, 100, bar.Points(), 1e-9)
	assert.Equal(t, "Processing.", bar.Text())
	assert.Contains(t, buf.String(), "Pushing agents")
	assert.True(t, strings.HasSuffix(buf.String(), "\n"))
}

func TestLiveTable_NonInteractiveDrawsOnClose(t *testing.T) {
	var buf bytes.Buffer
	view := NewLiveTable(&buf, 0, false)

	view.Update(TakeSnapshot("tool", []TestRow{{Name: "A", Code: CodeTestRunning}}))
	assert.Empty(t, buf.String())

	view.Notice(Notice{Message: "boom", RequestID: "abc"})
	assert.Equal(t, "boom\nRequest ID: abc\n", buf.String())

	view.Update(TakeSnapshot("tool", []TestRow{{Name: "A", Code: CodeTestCompleted, Status: 200}}))
	view.Close()
	assert.Contains(t, buf.String(), GlyphPassed)
	assert.NotContains(t, buf.String(), GlyphPending)
}

func TestLiveTable_InteractiveRedraws(t *testing.T) {
	var buf bytes.Buffer
	view := NewLiveTable(&buf, 0, true)

	view.Update(TakeSnapshot("tool", []TestRow{{Name: "A", Code: CodeTestRunning}}))
	first := buf.Len()
	assert.Positive(t, first)
	assert.Positive(t, view.lines)

	view.Update(TakeSnapshot("tool", []TestRow{{Name: "A", Code: CodeTestCompleted, Status: 200}}))
	assert.Contains(t, buf.String()[first:], "\x1b[")
}

func TestLiveTable_InteractiveFitsWidth(t *testing.T) {
	const width = 40
	var buf bytes.Buffer
	view := NewLiveTable(&buf, width, true)

	long := strings.Repeat("Your order contains two items and ships tomorrow. ", 4)
	view.Update(TakeSnapshot("get_address_with_a_long_tool_name", []TestRow{
		{Name: "a test case with a rather long name", Code: CodeTestRunning},
	}))
	drawn := view.lines
	require.Positive(t, drawn)

	view.Update(TakeSnapshot("get_address_with_a_long_tool_name", []TestRow{
		{Name: "a test case with a rather long name", Code: CodeTestCompleted, Status: 200, Response: long},
	}))
	view.Notice(Notice{Message: "Processing"})

	for _, line := range strings.Split(ansi.Strip(buf.String()), "\n") {
		line = strings.TrimPrefix(line, "\r")
		assert.LessOrEqual(t, ansi.StringWidth(line), width, "line %q", line)
	}
	assert.Contains(t, buf.String(), ansi.CursorUp(drawn))
}

func TestFitWidth(t *testing.T) {
	assert.Equal(t, "abc\nde", fitWidth("abcdef\nde", 3))
	assert.Equal(t, "abcdef", fitWidth("abcdef", 0))
}

func TestRenderRecords(t *testing.T) {
	out := RenderRecords([]TestRecord{
		{TestName: "skipped"},
		{TestName: "Test 1", Status: 200, Response: "Shipped", Logs: "\nstarted\nfinished\n"},
	})
	assert.NotContains(t, out, "skipped")
	assert.Contains(t, out, "Test Results for Test 1")
	assert.Contains(t, out, "Response")
	assert.Contains(t, out, "Shipped")
	assert.Contains(t, out, "Logs")
	assert.Contains(t, out, "finished")
}

func TestPanels(t *testing.T) {
	assert.Contains(t, ErrorPanel("bad things"), "Error")
	assert.Contains(t, ErrorPanel("bad things", "Failed to load definition file"), "Failed to load definition file")
	assert.Contains(t, SuccessPanel("done"), "Success")
}
