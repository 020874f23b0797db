package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"weni/internal/api"
	"weni/internal/reporting"
	"weni/pkg/logging"
)

// DefaultCLIBaseURL is the agents API used when none is configured.
const DefaultCLIBaseURL = "https://cli.cloud.weni.ai"

const subsystem = "CLIClient"

// CLIClient talks to the agents API: permission checks, definition
// pushes, remote test runs and tool logs.
type CLIClient struct {
	dispatcher     *api.Dispatcher
	toolkitVersion string
}

// Options configures a client.
type Options struct {
	BaseURL        string
	Token          string
	ProjectUUID    string
	Version        string
	ToolkitVersion string

	// HTTPClient is used instead of the default session when set.
	HTTPClient *http.Client
}

func (o Options) dispatcher(defaultBaseURL string) *api.Dispatcher {
	baseURL := o.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	d := api.NewDispatcher(api.Config{
		BaseURL:     baseURL,
		Token:       o.Token,
		ProjectUUID: o.ProjectUUID,
		Version:     o.Version,
		HTTPClient:  o.HTTPClient,
	})
	logging.Debug(subsystem, "using API at %s", d.BaseURL())
	return d
}

// NewCLIClient creates a client for the agents API.
func NewCLIClient(opts Options) *CLIClient {
	return &CLIClient{
		dispatcher:     opts.dispatcher(DefaultCLIBaseURL),
		toolkitVersion: opts.ToolkitVersion,
	}
}

// ToolArchive is a packaged tool folder attached to a request.
type ToolArchive struct {
	// Key is the multipart field name, e.g. "<agent_key>:<tool_key>".
	Key     string
	Name    string
	Content io.Reader
}

// CheckProjectPermission verifies the logged in user can act on project.
func (c *CLIClient) CheckProjectPermission(ctx context.Context, projectUUID string) error {
	err := c.dispatcher.DoJSON(ctx, api.Request{
		Method:   http.MethodPost,
		Endpoint: "api/v1/permissions/verify",
		JSON:     map[string]string{"project_uuid": projectUUID},
	}, nil)
	return api.Wrap("Failed to check project permission", err)
}

// PushRequest is an agent definition upload.
type PushRequest struct {
	ProjectUUID string
	Definition  any
	Archives    []ToolArchive
	// ForceUpdate asks the server to update agents even if unchanged.
	ForceUpdate bool
}

// PushDefinition uploads an agent definition and its tool archives and
// reports server progress to sink. A failure event in the stream aborts
// the push.
func (c *CLIClient) PushDefinition(ctx context.Context, in PushRequest, sink reporting.ProgressSink) error {
	encoded, err := json.Marshal(in.Definition)
	if err != nil {
		return fmt.Errorf("encoding definition: %w", err)
	}

	req := api.Request{
		Method:   http.MethodPost,
		Endpoint: "api/v1/agents",
		Fields: []api.Field{
			{Name: "project_uuid", Value: in.ProjectUUID},
			{Name: "definition", Value: string(encoded)},
			{Name: "toolkit_version", Value: c.toolkitVersion},
		},
	}
	if in.ForceUpdate {
		req.Fields = append(req.Fields, api.Field{Name: "force_update", Value: "true"})
	}
	for _, archive := range in.Archives {
		req.Files = append(req.Files, api.File{Field: archive.Key, Name: archive.Name, Content: archive.Content})
	}

	progress := reporting.NewPushProgress(sink)
	err = c.dispatcher.Stream(ctx, req, func(event api.Event) error {
		_, err := progress.Apply(event)
		return err
	})
	logging.Debug(subsystem, "push stream ended after %d events", progress.Events())
	return api.Wrap("Failed to push agents", err)
}

// RunTestRequest holds everything sent for a remote test run.
type RunTestRequest struct {
	ProjectUUID    string
	Definition     any
	TestDefinition any
	AgentKey       string
	ToolKey        string
	Credentials    map[string]string
	Globals        map[string]string
	Tool           ToolArchive
	Verbose        bool
}

// RunTest streams the results of a remote test run into view. Failure
// events are shown as notices and do not end the run. The verbose records
// collected along the way are returned.
func (c *CLIClient) RunTest(ctx context.Context, in RunTestRequest, view reporting.TestRunView) ([]reporting.TestRecord, error) {
	fields := []api.Field{
		{Name: "project_uuid", Value: in.ProjectUUID},
		{Name: "tool_key", Value: in.ToolKey},
		{Name: "agent_key", Value: in.AgentKey},
		{Name: "toolkit_version", Value: c.toolkitVersion},
	}
	for _, field := range []struct {
		name  string
		value any
	}{
		{"definition", in.Definition},
		{"test_definition", in.TestDefinition},
		{"tool_credentials", nonNil(in.Credentials)},
		{"tool_globals", nonNil(in.Globals)},
	} {
		encoded, err := json.Marshal(field.value)
		if err != nil {
			return nil, fmt.Errorf("encoding %s: %w", field.name, err)
		}
		fields = append(fields, api.Field{Name: field.name, Value: string(encoded)})
	}

	req := api.Request{
		Method:   http.MethodPost,
		Endpoint: "api/v1/runs",
		Fields:   fields,
		Files:    []api.File{{Field: in.Tool.Key, Name: in.Tool.Name, Content: in.Tool.Content}},
	}

	run := reporting.NewTestRun(in.ToolKey, in.Verbose)
	err := c.dispatcher.Stream(ctx, req, func(event api.Event) error {
		update := run.Apply(event)
		if update.Notice != nil {
			view.Notice(*update.Notice)
		}
		if update.RowChanged {
			view.Update(run.Snapshot())
		}
		return nil
	})
	if err != nil {
		return run.Records(), api.Wrap("Failed to run test", err)
	}
	return run.Records(), nil
}

func nonNil(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}

// ToolLog is a single log line emitted by a tool.
type ToolLog struct {
	// Timestamp is in milliseconds since the epoch.
	Timestamp int64  `json:"timestamp"`
	Message   string `json:"message"`
}

// ToolLogsQuery selects the logs to fetch. Empty fields are not sent.
type ToolLogsQuery struct {
	AgentKey  string
	ToolKey   string
	StartTime string
	EndTime   string
	Pattern   string
	NextToken string
}

// ToolLogsPage is one page of tool logs.
type ToolLogsPage struct {
	Logs      []ToolLog `json:"logs"`
	NextToken string    `json:"next_token"`
}

// GetToolLogs fetches one page of logs for a tool.
func (c *CLIClient) GetToolLogs(ctx context.Context, q ToolLogsQuery) (ToolLogsPage, error) {
	query := url.Values{}
	for key, value := range map[string]string{
		"agent_key":  q.AgentKey,
		"tool_key":   q.ToolKey,
		"start_time": q.StartTime,
		"end_time":   q.EndTime,
		"pattern":    q.Pattern,
		"next_token": q.NextToken,
	} {
		if value != "" {
			query.Set(key, value)
		}
	}

	var page ToolLogsPage
	err := c.dispatcher.DoJSON(ctx, api.Request{
		Method:   http.MethodGet,
		Endpoint: "api/v1/tool-logs/",
		Query:    query,
	}, &page)
	if err != nil {
		return ToolLogsPage{}, api.Wrap("Failed to get logs", err)
	}
	if page.Logs == nil {
		page.Logs = []ToolLog{}
	}
	return page, nil
}
