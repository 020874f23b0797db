package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

const sampleDefinitionFile = "agent_definition.yaml"

const sampleDefinition = `agents:
  sample_agent:
    name: "Sample Agent"                                                                      # Maximum of 128 characters
    description: "Weni's sample agent"
    instructions:
      - "You should always be polite, respectful and helpful, even if the user is not."       # Minimum of 40 characters
      - "If you don't know the answer, don't lie. Tell the user you don't know."              # Minimum of 40 characters
    guardrails:
      - "Don't talk about politics, religion or any other sensitive topic. Keep it neutral."  # Minimum of 40 characters
    tools:
      - get_order_status:
          name: "Get Order Status"                                                            # Maximum of 53 characters
          description: "Function to get the order status"
          source:
            path: "tools/order_status"
            entrypoint: "main.lambda_handler"
          parameters:
            - order_id:
                description: "Order ID"
                type: "string"
                required: true
      - get_order_details:
          name: "Get Order Details"                                                           # Maximum of 53 characters
          description: "Function to get the order details"
          source:
            path: "tools/order_details"
            entrypoint: "main.lambda_handler"
          parameters:
            - order_id:
                description: "Order ID"
                type: "string"
                required: true
`

const sampleToolTemplate = `def lambda_handler(event, context):
    response_body = {
        'TEXT': {
            'body': %q
        }
    }

    function_response = {
        'actionGroup': event['actionGroup'],
        'function': event['function'],
        'functionResponse': {
            'responseBody': response_body
        }
    }

    return {
        'messageVersion': '1.0',
        'response': function_response,
        'sessionAttributes': event['sessionAttributes'],
        'promptSessionAttributes': event['promptSessionAttributes']
    }
`

const sampleTestDefinition = `tests:
  test_1:
    parameters:
      order_id: "123"
`

type sampleTool struct {
	folder string
	body   string
}

var sampleTools = []sampleTool{
	{folder: "order_status", body: "Your order status is 'Shipped'"},
	{folder: "order_details", body: "Your order contains 2 items, a t-shirt and a pair of shoes."},
}

func newInitCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a sample agent definition and tools",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, dir)
		},
	}
	cmd.Flags().StringVar(&dir, "dir", ".", "Directory to create the sample in")
	return cmd
}

func runInit(cmd *cobra.Command, dir string) error {
	out := cmd.OutOrStdout()

	definitionPath := filepath.Join(dir, sampleDefinitionFile)
	if err := writeNewFile(definitionPath, sampleDefinition); err != nil {
		return err
	}
	fmt.Fprintf(out, "Sample agent definition file created in: %s\n", definitionPath)

	for _, tool := range sampleTools {
		toolDir := filepath.Join(dir, "tools", tool.folder)
		if err := os.MkdirAll(toolDir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", toolDir, err)
		}
		if err := writeNewFile(filepath.Join(toolDir, "main.py"), fmt.Sprintf(sampleToolTemplate, tool.body)); err != nil {
			return err
		}
		if err := writeNewFile(filepath.Join(toolDir, "test_definition.yaml"), sampleTestDefinition); err != nil {
			return err
		}
		fmt.Fprintf(out, "Sample tool created in: %s\n", toolDir)
	}
	return nil
}

// writeNewFile refuses to overwrite existing files.
func writeNewFile(path, content string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("%s already exists", path)
	}
	if err != nil {
		return err
	}
	if _, err := f.WriteString(content); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
