package cmd

import (
	"bytes"
	"net/http"
	"strings"
	"testing"

	"weni/internal/api"
	"weni/pkg/logging"

	"github.com/spf13/cobra"
)

func TestSetVersion(t *testing.T) {
	originalVersion := rootCmd.Version
	defer func() { rootCmd.Version = originalVersion }()

	testVersion := "1.2.3-test"
	SetVersion(testVersion)

	if rootCmd.Version != testVersion {
		t.Errorf("Expected version to be %s, got %s", testVersion, rootCmd.Version)
	}
}

func TestRootCommand(t *testing.T) {
	if rootCmd.Use != "weni" {
		t.Errorf("Expected Use to be 'weni', got %s", rootCmd.Use)
	}

	if rootCmd.Short == "" {
		t.Error("Expected Short description to be set")
	}

	if !rootCmd.SilenceUsage {
		t.Error("Expected SilenceUsage to be true")
	}

	for _, name := range []string{"debug", "log-level", "no-color"} {
		if rootCmd.PersistentFlags().Lookup(name) == nil {
			t.Errorf("Expected --%s flag to be registered", name)
		}
	}
}

func TestVersionTemplate(t *testing.T) {
	testCmd := &cobra.Command{
		Use:     "test",
		Version: "1.0.0",
	}
	testCmd.SetVersionTemplate(`{{printf "weni version %s\n" .Version}}`)

	var buf bytes.Buffer
	testCmd.SetOut(&buf)
	testCmd.SetArgs([]string{"--version"})
	if err := testCmd.Execute(); err != nil {
		t.Fatalf("Error executing version command: %v", err)
	}

	expected := "weni version 1.0.0\n"
	if buf.String() != expected {
		t.Errorf("Expected version output %q, got %q", expected, buf.String())
	}
}

func TestVersionCommand(t *testing.T) {
	originalVersion := rootCmd.Version
	defer func() { rootCmd.Version = originalVersion }()
	rootCmd.Version = "2.0.0"

	versionCmd := newVersionCmd()
	var buf bytes.Buffer
	versionCmd.SetOut(&buf)
	versionCmd.SetArgs([]string{})
	if err := versionCmd.Execute(); err != nil {
		t.Fatalf("Error executing version command: %v", err)
	}
	if buf.String() != "weni version 2.0.0\n" {
		t.Errorf("Unexpected version output %q", buf.String())
	}
}

func TestSubcommands(t *testing.T) {
	expectedCommands := []string{"login", "init", "project", "run", "logs", "version", "self-update"}
	foundCommands := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		foundCommands[cmd.Name()] = true
	}

	for _, expected := range expectedCommands {
		if !foundCommands[expected] {
			t.Errorf("Expected subcommand %s not found", expected)
		}
	}
}

func TestProjectSubcommands(t *testing.T) {
	projectCmd := newProjectCmd()
	found := make(map[string]bool)
	for _, cmd := range projectCmd.Commands() {
		found[cmd.Name()] = true
	}
	for _, expected := range []string{"list", "use", "current", "push"} {
		if !found[expected] {
			t.Errorf("Expected project subcommand %s not found", expected)
		}
	}
}

func TestResolveLogLevel(t *testing.T) {
	level, err := resolveLogLevel("info", false)
	if err != nil || level != logging.LevelInfo {
		t.Errorf("resolveLogLevel(info) got %v, %v", level, err)
	}

	level, err = resolveLogLevel("error", true)
	if err != nil || level != logging.LevelDebug {
		t.Errorf("Expected --debug to win, got %v, %v", level, err)
	}

	if _, err := resolveLogLevel("loud", false); err == nil {
		t.Error("Expected an error for an unknown level")
	}
}

func TestErrorMessage(t *testing.T) {
	expired := api.Wrap("Failed to list organizations", api.NewError("Invalid token", http.StatusUnauthorized, nil, ""))
	if got := errorMessage(expired); !strings.Contains(got, "weni login") || !strings.HasPrefix(got, "Failed to list organizations: Invalid token") {
		t.Errorf("errorMessage() got %q", got)
	}

	forbidden := api.NewError("Forbidden", http.StatusForbidden, nil, "")
	if got := errorMessage(forbidden); got != "Forbidden" {
		t.Errorf("errorMessage() got %q, want %q", got, "Forbidden")
	}
}
