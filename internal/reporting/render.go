package reporting

import (
	"fmt"
	"io"
	"strings"

	"weni/internal/color"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/x/ansi"
)

const (
	progressBarWidth = 36
	// maxResponseWidth limits the response column when no width is known.
	maxResponseWidth = 80
)

// ProgressBar is a single-line terminal progress bar with a label. It
// implements ProgressSink. Points are tracked unclamped; only the drawn
// bar is limited to 0-100.
type ProgressBar struct {
	out    io.Writer
	title  string
	bar    progress.Model
	points float64
	label  string
}

// NewProgressBar creates a bar titled title that draws to out.
func NewProgressBar(out io.Writer, title string) *ProgressBar {
	return &ProgressBar{
		out:   out,
		title: title,
		bar: progress.New(
			progress.WithDefaultGradient(),
			progress.WithWidth(progressBarWidth),
			progress.WithoutPercentage(),
		),
	}
}

// Advance moves the bar forward by delta points.
func (b *ProgressBar) Advance(delta float64) {
	b.points += delta
	b.draw()
}

// Label sets the text shown after the bar.
func (b *ProgressBar) Label(text string) {
	b.label = text
	b.draw()
}

// Points returns the total advance so far.
func (b *ProgressBar) Points() float64 {
	return b.points
}

// Text returns the current label.
func (b *ProgressBar) Text() string {
	return b.label
}

// Finish ends the bar's line.
func (b *ProgressBar) Finish() {
	fmt.Fprintln(b.out)
}

func (b *ProgressBar) draw() {
	percent := b.points / 100
	if percent < 0 {
		percent = 0
	}
	if percent > 1 {
		percent = 1
	}
	fmt.Fprintf(b.out, "\r%s%s  %s  %s", ansi.EraseEntireLine, b.title, b.bar.ViewAs(percent), b.label)
}

// TestRunView receives the state of a test run as it changes.
type TestRunView interface {
	// Update is called with a fresh snapshot after every row change.
	Update(snapshot Snapshot)
	// Notice is called for messages that are not rows.
	Notice(notice Notice)
}

// LiveTable redraws the results table in place on a terminal. When live is
// false (output is not a terminal) intermediate states are not drawn and
// the final table is printed by Close.
type LiveTable struct {
	out   io.Writer
	width int
	live  bool
	last  Snapshot
	lines int
}

// NewLiveTable creates a table view. width <= 0 lets the table size itself;
// otherwise no drawn line is wider than width, so redraws erase exactly
// the rows they drew.
func NewLiveTable(out io.Writer, width int, live bool) *LiveTable {
	return &LiveTable{out: out, width: width, live: live}
}

// Update replaces the drawn table with snapshot.
func (l *LiveTable) Update(snapshot Snapshot) {
	l.last = snapshot
	if !l.live {
		return
	}
	l.clear()
	l.draw()
}

// Notice prints a message above the table.
func (l *LiveTable) Notice(notice Notice) {
	if !l.live {
		fmt.Fprintln(l.out, notice.String())
		return
	}
	l.clear()
	fmt.Fprintln(l.out, notice.String())
	l.draw()
}

// Close leaves the final table on screen.
func (l *LiveTable) Close() {
	if !l.live {
		l.draw()
	}
}

func (l *LiveTable) clear() {
	if l.lines == 0 {
		return
	}
	fmt.Fprint(l.out, ansi.CursorUp(l.lines)+"\r"+ansi.EraseScreenBelow)
	l.lines = 0
}

func (l *LiveTable) draw() {
	rendered := fitWidth(RenderTable(l.last, l.width), l.width)
	if rendered == "" {
		return
	}
	fmt.Fprintln(l.out, rendered)
	l.lines = lipgloss.Height(rendered)
}

// RenderTable draws a snapshot as a bordered table with a title line.
// An empty snapshot renders as "".
func RenderTable(snapshot Snapshot, width int) string {
	if snapshot.Empty() {
		return ""
	}

	responseWidth := maxResponseWidth
	if width > 0 {
		responseWidth = width / 2
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(color.Border)).
		Headers("Test Name", "Status", "Response").
		StyleFunc(func(row, col int) lipgloss.Style {
			style := color.CellStyle
			if row == table.HeaderRow {
				style = color.HeaderStyle
			}
			if col == 1 {
				return style.Align(lipgloss.Center)
			}
			return style
		})
	for _, row := range snapshot.Rows {
		t.Row(row.Name, row.Status, singleLine(row.Response, responseWidth))
	}
	if width > 0 {
		t.Width(width)
	}

	return color.TitleStyle.Render(snapshot.Title) + "\n" + t.Render()
}

// fitWidth truncates every line of s to width cells. A terminal would
// otherwise wrap long lines onto rows the cursor-up in clear never reaches.
func fitWidth(s string, width int) string {
	if width <= 0 || s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = ansi.Truncate(line, width, "")
	}
	return strings.Join(lines, "\n")
}

// singleLine collapses whitespace and truncates to width cells.
func singleLine(s string, width int) string {
	s = strings.Join(strings.Fields(s), " ")
	return ansi.Truncate(s, width, "…")
}

// Panel renders body in a rounded box with a colored title line.
func Panel(title, body string, accent lipgloss.Color) string {
	header := lipgloss.NewStyle().Bold(true).Foreground(accent).Render(title)
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Padding(0, 1).
		Render(header + "\n\n" + body)
}

// ErrorPanel renders a red panel titled "Error" unless title is given.
func ErrorPanel(message string, title ...string) string {
	heading := "Error"
	if len(title) > 0 && title[0] != "" {
		heading = title[0]
	}
	return Panel(heading, message, color.Error)
}

// SuccessPanel renders a green panel titled "Success".
func SuccessPanel(message string) string {
	return Panel("Success", message, color.Success)
}

// RenderRecords renders the verbose response and log panels collected
// during a run. Records with neither a response nor logs are skipped.
func RenderRecords(records []TestRecord) string {
	var sections []string
	for _, record := range records {
		if isBlank(record.Response) && record.Logs == "" {
			continue
		}

		var inner []string
		if !isBlank(record.Response) {
			inner = append(inner, Panel("Response", FormatResponse(record.Response), color.Warning))
		}
		if record.Logs != "" {
			inner = append(inner, Panel("Logs", strings.Trim(record.Logs, "\n"), color.Info))
		}
		sections = append(sections, Panel(
			fmt.Sprintf("Test Results for %s", record.TestName),
			lipgloss.JoinVertical(lipgloss.Left, inner...),
			color.Success,
		))
	}
	return strings.Join(sections, "\n")
}
