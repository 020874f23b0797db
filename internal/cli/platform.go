package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"weni/internal/api"
	"weni/pkg/logging"
)

// DefaultPlatformBaseURL is the platform API used when none is configured.
const DefaultPlatformBaseURL = "https://api.weni.ai"

const organizationsEndpoint = "v2/organizations/"

// ErrNoOrganizations is returned when the user belongs to no organization.
var ErrNoOrganizations = errors.New("no organizations found")

// Organization is a platform organization.
type Organization struct {
	Name string `json:"name"`
	UUID string `json:"uuid"`
}

// Project is a platform project.
type Project struct {
	Name string `json:"name"`
	UUID string `json:"uuid"`
}

// PlatformClient talks to the platform API for organizations and projects.
type PlatformClient struct {
	dispatcher *api.Dispatcher
}

// NewPlatformClient creates a client for the platform API.
func NewPlatformClient(opts Options) *PlatformClient {
	return &PlatformClient{dispatcher: opts.dispatcher(DefaultPlatformBaseURL)}
}

// GetOrganization fetches a single organization.
func (c *PlatformClient) GetOrganization(ctx context.Context, orgUUID string) (Organization, error) {
	var org Organization
	err := c.dispatcher.DoJSON(ctx, api.Request{
		Method:   http.MethodGet,
		Endpoint: fmt.Sprintf("%s%s/", organizationsEndpoint, orgUUID),
	}, &org)
	if err != nil {
		return Organization{}, api.Wrap("Failed to get organization", err)
	}
	return org, nil
}

// ListOrganizations fetches one page of organizations. An empty cursor
// fetches the first page. The returned cursor is "" on the last page.
func (c *PlatformClient) ListOrganizations(ctx context.Context, cursor string) (string, []Organization, error) {
	if cursor == "" {
		cursor = organizationsEndpoint
	}
	next, orgs, err := api.ListPage[Organization](ctx, c.dispatcher, cursor)
	if err != nil {
		return "", nil, api.Wrap("Failed to list organizations", err)
	}
	return next, orgs, nil
}

// ListAllProjects drains every page of an organization's projects.
func (c *PlatformClient) ListAllProjects(ctx context.Context, orgUUID string) ([]Project, error) {
	walker := api.NewPageWalker[Project](c.dispatcher, fmt.Sprintf("%s%s/projects", organizationsEndpoint, orgUUID))
	projects, err := walker.Collect(ctx)
	if err != nil {
		return nil, api.Wrap("Failed to list projects", err)
	}
	return projects, nil
}

// OrgProjects is one organization with all of its projects.
type OrgProjects struct {
	Organization Organization
	Projects     []Project
}

// OrgProjectMap keeps organizations in the order they were loaded.
type OrgProjectMap struct {
	entries []OrgProjects
	index   map[string]int
}

// Put adds or replaces an organization's projects.
func (m *OrgProjectMap) Put(entry OrgProjects) {
	if m.index == nil {
		m.index = make(map[string]int)
	}
	if i, ok := m.index[entry.Organization.UUID]; ok {
		m.entries[i] = entry
		return
	}
	m.index[entry.Organization.UUID] = len(m.entries)
	m.entries = append(m.entries, entry)
}

// Get returns the projects of the organization with uuid.
func (m *OrgProjectMap) Get(uuid string) (OrgProjects, bool) {
	i, ok := m.index[uuid]
	if !ok {
		return OrgProjects{}, false
	}
	return m.entries[i], true
}

// Entries returns the organizations in load order.
func (m *OrgProjectMap) Entries() []OrgProjects {
	entries := make([]OrgProjects, len(m.entries))
	copy(entries, m.entries)
	return entries
}

// Len returns the number of organizations loaded.
func (m *OrgProjectMap) Len() int {
	return len(m.entries)
}

// ProjectWalker pages through organizations one page at a time and, for
// each organization on a page, drains its projects before moving on.
// Control returns to the caller between organization pages.
type ProjectWalker struct {
	client  *PlatformClient
	cursor  string
	started bool
	done    bool
	loaded  OrgProjectMap
}

// NewProjectWalker starts a walk over every organization of the user.
func NewProjectWalker(client *PlatformClient) *ProjectWalker {
	return &ProjectWalker{client: client}
}

// Next loads the next page of organizations and their projects. visit, if
// not nil, is called for each organization as soon as its projects are
// loaded. A failure while listing any organization's projects aborts the
// whole walk; organizations already visited stay in Projects().
func (w *ProjectWalker) Next(ctx context.Context, visit func(OrgProjects)) error {
	if w.done {
		return nil
	}

	next, orgs, err := w.client.ListOrganizations(ctx, w.cursor)
	if err != nil {
		w.finish()
		return err
	}
	first := !w.started
	w.started = true
	if first && len(orgs) == 0 {
		w.finish()
		return ErrNoOrganizations
	}

	for _, org := range orgs {
		projects, err := w.client.ListAllProjects(ctx, org.UUID)
		if err != nil {
			w.finish()
			return err
		}
		entry := OrgProjects{Organization: org, Projects: projects}
		w.loaded.Put(entry)
		if visit != nil {
			visit(entry)
		}
	}
	logging.Debug(subsystem, "loaded %d organizations, %d total", len(orgs), w.loaded.Len())

	w.cursor = next
	if next == "" {
		w.done = true
	}
	return nil
}

// HasMore reports whether another page of organizations may exist.
func (w *ProjectWalker) HasMore() bool {
	return !w.done
}

// Projects returns everything loaded so far.
func (w *ProjectWalker) Projects() *OrgProjectMap {
	return &w.loaded
}

func (w *ProjectWalker) finish() {
	w.done = true
	w.cursor = ""
}

// ProjectsForOrganization loads a single organization and all its projects.
func (c *PlatformClient) ProjectsForOrganization(ctx context.Context, orgUUID string) (OrgProjects, error) {
	org, err := c.GetOrganization(ctx, orgUUID)
	if err != nil {
		return OrgProjects{}, err
	}
	projects, err := c.ListAllProjects(ctx, org.UUID)
	if err != nil {
		return OrgProjects{}, err
	}
	return OrgProjects{Organization: org, Projects: projects}, nil
}
