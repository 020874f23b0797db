package cmd

import (
	"fmt"

	"weni/internal/cli"
	"weni/internal/definition"
	"weni/internal/packager"
	"weni/internal/reporting"

	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	var (
		testFile string
		verbose  bool
	)

	cmd := &cobra.Command{
		Use:   "run <definition> <agent_key> <tool_key>",
		Short: "Run a tool's test cases on the platform",
		Long: `Packages a tool, sends it with its test definition to the platform and
shows each test case's result as it arrives.

The test definition defaults to the tool's source.path_test, or to
test_definition.yaml inside the tool folder. Credentials are read from the
tool folder's .env file and globals from its .globals file.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTest(cmd, args[0], args[1], args[2], testFile, verbose)
		},
	}
	cmd.Flags().StringVarP(&testFile, "file", "f", "", "Test definition file")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show the response and logs of every test case")
	return cmd
}

func runTest(cmd *cobra.Command, definitionPath, agentKey, toolKey, testFile string, verbose bool) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	projectUUID, err := requireProject(store)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	def, err := definition.Load(definitionPath)
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), reporting.ErrorPanel(
			fmt.Sprintf("Invalid agent definition YAML file format, error:\n%v", err),
			"Error loading agent definition",
		))
		return fmt.Errorf("invalid agent definition %s", definitionPath)
	}

	_, tool, err := def.Tool(agentKey, toolKey)
	if err != nil {
		return err
	}

	if testFile == "" {
		testFile = tool.TestDefinitionPath()
	}
	testDefinition, err := definition.LoadTestDefinition(testFile)
	if err != nil {
		return fmt.Errorf("Failed to load test definition file %s: %w\nYou can use the --file option to specify a different file.", testFile, err)
	}

	archive, err := packager.Package(toolKey, tool.Source.Path)
	if err != nil {
		return fmt.Errorf("Failed to create tool folder for tool %s in agent %s\n%w", toolKey, agentKey, err)
	}

	credentials, err := definition.LoadToolEnv(tool.Source.Path, definition.CredentialsFile)
	if err != nil {
		return fmt.Errorf("reading tool credentials: %w", err)
	}
	globals, err := definition.LoadToolEnv(tool.Source.Path, definition.GlobalsFile)
	if err != nil {
		return fmt.Errorf("reading tool globals: %w", err)
	}

	view := reporting.NewLiveTable(out, terminalWidth(out), isTerminal(out))
	records, err := newCLIClient(store).RunTest(cmd.Context(), cli.RunTestRequest{
		ProjectUUID:    projectUUID,
		Definition:     def.Format(),
		TestDefinition: testDefinition,
		AgentKey:       agentKey,
		ToolKey:        toolKey,
		Credentials:    credentials,
		Globals:        globals,
		Tool:           cli.ToolArchive{Key: "tool", Name: archive.Name, Content: archive.Reader()},
		Verbose:        verbose,
	}, view)
	view.Close()
	if err != nil {
		return err
	}

	if verbose {
		if rendered := reporting.RenderRecords(records); rendered != "" {
			fmt.Fprintln(out)
			fmt.Fprintln(out, rendered)
		}
	}
	return nil
}
