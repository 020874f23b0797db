package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"weni/internal/cli"
	"weni/internal/config"

	"github.com/charmbracelet/x/term"
	"github.com/mattn/go-isatty"
)

var (
	errNotLoggedIn       = errors.New("Missing login authorization, please login first")
	errNoProjectSelected = errors.New("No project selected, please select a project first")
)

// openStore is swapped in tests.
var openStore = config.OpenStore

func requireLogin(store *config.Store) error {
	if store.Get(config.KeyToken) == "" {
		return errNotLoggedIn
	}
	return nil
}

func requireProject(store *config.Store) (string, error) {
	if err := requireLogin(store); err != nil {
		return "", err
	}
	projectUUID := store.Get(config.KeyProjectUUID)
	if projectUUID == "" {
		return "", errNoProjectSelected
	}
	return projectUUID, nil
}

func clientOptions(store *config.Store, baseURL string) cli.Options {
	cfg := store.Config()
	return cli.Options{
		BaseURL:        baseURL,
		Token:          cfg.Token,
		ProjectUUID:    cfg.ProjectUUID,
		Version:        rootCmd.Version,
		ToolkitVersion: cfg.ToolkitVersion,
	}
}

func newCLIClient(store *config.Store) *cli.CLIClient {
	return cli.NewCLIClient(clientOptions(store, store.Get(config.KeyCLIBaseURL)))
}

func newPlatformClient(store *config.Store) *cli.PlatformClient {
	return cli.NewPlatformClient(clientOptions(store, store.Get(config.KeyWeniBaseURL)))
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// terminalWidth returns the column count of w, or 0 when w is not a
// terminal or its size is unknown.
func terminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok || !isTerminal(f) {
		return 0
	}
	width, _, err := term.GetSize(f.Fd())
	if err != nil || width <= 0 {
		return 0
	}
	return width
}

// prompter reads single-line answers.
type prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: bufio.NewReader(in), out: out}
}

// ask prints question and returns the trimmed, lowercased answer, or def
// when the answer is empty. Closed input returns io.EOF so callers stop
// asking.
func (p *prompter) ask(question, def string) (string, error) {
	fmt.Fprint(p.out, question)
	line, err := p.in.ReadString('\n')
	answer := strings.ToLower(strings.TrimSpace(line))
	if err != nil {
		if errors.Is(err, io.EOF) && answer != "" {
			return answer, nil
		}
		fmt.Fprintln(p.out)
		return "", err
	}
	if answer == "" {
		return def, nil
	}
	return answer, nil
}
