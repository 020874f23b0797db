package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"weni/internal/cli"
	"weni/internal/color"
	"weni/internal/config"
	"weni/internal/definition"
	"weni/internal/packager"
	"weni/internal/reporting"

	"github.com/google/uuid"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
)

const loadMorePrompt = `Press "q" to quit or press "p" to load more projects [p]: `

func newProjectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Select projects and push agent definitions",
	}
	cmd.AddCommand(newProjectListCmd())
	cmd.AddCommand(newProjectUseCmd())
	cmd.AddCommand(newProjectCurrentCmd())
	cmd.AddCommand(newProjectPushCmd())
	return cmd
}

func newProjectListCmd() *cobra.Command {
	var orgUUID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the projects you have access to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProjectList(cmd, orgUUID)
		},
	}
	cmd.Flags().StringVar(&orgUUID, "org", "", "Only list the projects of this organization")
	return cmd
}

func runProjectList(cmd *cobra.Command, orgUUID string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	if err := requireLogin(store); err != nil {
		return err
	}
	client := newPlatformClient(store)
	out := cmd.OutOrStdout()
	ctx := cmd.Context()

	if orgUUID != "" {
		if _, err := uuid.Parse(orgUUID); err != nil {
			return fmt.Errorf("Invalid organization UUID %q", orgUUID)
		}
		entry, err := client.ProjectsForOrganization(ctx, orgUUID)
		if err != nil {
			return err
		}
		printOrgProjects(out, entry)
		return nil
	}

	return walkProjects(ctx, cli.NewProjectWalker(client), newPrompter(cmd.InOrStdin(), out), out)
}

// walkProjects prints one page of organizations at a time and asks before
// loading the next.
func walkProjects(ctx context.Context, walker *cli.ProjectWalker, prompt *prompter, out io.Writer) error {
	for walker.HasMore() {
		err := walker.Next(ctx, func(entry cli.OrgProjects) {
			printOrgProjects(out, entry)
		})
		if errors.Is(err, cli.ErrNoOrganizations) {
			fmt.Fprintln(out, "No orgs found")
			return nil
		}
		if err != nil {
			return err
		}
		if !walker.HasMore() {
			return nil
		}

		answer, err := prompt.ask(loadMorePrompt, "p")
		if err != nil || answer == "q" {
			return nil
		}
	}
	return nil
}

func printOrgProjects(out io.Writer, entry cli.OrgProjects) {
	width := 0
	for _, project := range entry.Projects {
		if w := runewidth.StringWidth(project.Name); w > width {
			width = w
		}
	}

	fmt.Fprintf(out, "\nOrg %s\n", entry.Organization.Name)
	for _, project := range entry.Projects {
		fmt.Fprintf(out, "%s %s%s\n", color.BulletStyle.Render("-"), runewidth.FillRight(project.Name, width+2), project.UUID)
	}
}

func newProjectUseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "use <project-uuid>",
		Short: "Select the project to work on",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProjectUse(cmd, args[0])
		},
	}
}

func runProjectUse(cmd *cobra.Command, projectUUID string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	if err := requireLogin(store); err != nil {
		return err
	}
	if _, err := uuid.Parse(projectUUID); err != nil {
		return fmt.Errorf("Invalid project UUID %q", projectUUID)
	}

	if err := newCLIClient(store).CheckProjectPermission(cmd.Context(), projectUUID); err != nil {
		return err
	}
	if err := store.Set(config.KeyProjectUUID, projectUUID); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), reporting.SuccessPanel(fmt.Sprintf("Project %s set as default", projectUUID)))
	return nil
}

func newProjectCurrentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "current",
		Short: "Show the selected project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			projectUUID := store.Get(config.KeyProjectUUID)
			if projectUUID == "" {
				return errNoProjectSelected
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Current project: %s\n", projectUUID)
			return nil
		},
	}
}

func newProjectPushCmd() *cobra.Command {
	var forceUpdate bool

	cmd := &cobra.Command{
		Use:   "push <definition>",
		Short: "Push an agent definition and its tools to the selected project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProjectPush(cmd, args[0], forceUpdate)
		},
	}
	cmd.Flags().BoolVar(&forceUpdate, "force-update", false, "Update agents even if they are unchanged")
	return cmd
}

func runProjectPush(cmd *cobra.Command, definitionPath string, forceUpdate bool) error {
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
			"Failed to load definition file",
		))
		return fmt.Errorf("invalid agent definition %s", definitionPath)
	}

	var archives []cli.ToolArchive
	for _, agentKey := range def.AgentKeys() {
		agent := def.Agents[agentKey]
		for _, tool := range agent.ToolList() {
			archive, err := packager.Package(tool.Key, tool.Source.Path)
			if err != nil {
				return fmt.Errorf("Failed to create tool folder for tool %s in agent %s\n%w", tool.Name, agent.Name, err)
			}
			archives = append(archives, cli.ToolArchive{
				Key:     agentKey + ":" + tool.Key,
				Name:    archive.Name,
				Content: archive.Reader(),
			})
		}
	}

	if version := store.Get(config.KeyToolkitVersion); version != "" {
		fmt.Fprintf(out, "Using toolkit version: %s\n", version)
	}
	bar := reporting.NewProgressBar(progressOutput(out), "Pushing agents")
	err = newCLIClient(store).PushDefinition(cmd.Context(), cli.PushRequest{
		ProjectUUID: projectUUID,
		Definition:  def.Format(),
		Archives:    archives,
		ForceUpdate: forceUpdate,
	}, bar)
	bar.Finish()
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "Definition pushed successfully")
	return nil
}

// progressOutput hides the redrawn progress bar when out is not a terminal.
func progressOutput(out io.Writer) io.Writer {
	if isTerminal(out) {
		return out
	}
	return io.Discard
}
