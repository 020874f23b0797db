// Package color holds the terminal palette and styles shared by weni's
// output.
//
// # Palette
//
// Colors are semantic rather than literal:
//   - Error: failures and error panels
//   - Success: passed tests and success panels
//   - Warning: response panels and in-progress states
//   - Info: log panels
//   - Border: table borders
//
// # Color Detection
//
// lipgloss detects terminal capabilities on its own. Disable forces plain
// text output, which is what NO_COLOR and the --no-color flag select.
package color
