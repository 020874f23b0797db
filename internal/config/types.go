package config

// Keys accepted by Store.Get and Store.Set.
const (
	KeyToken            = "token"
	KeyProjectUUID      = "project_uuid"
	KeyCLIBaseURL       = "cli_base_url"
	KeyWeniBaseURL      = "weni_base_url"
	KeyKeycloakURL      = "keycloak_url"
	KeyKeycloakRealm    = "keycloak_realm"
	KeyKeycloakClientID = "keycloak_client_id"
	KeyToolkitVersion   = "toolkit_version"
)

// Config is the merged weni configuration.
type Config struct {
	Token            string `yaml:"token,omitempty"`
	ProjectUUID      string `yaml:"project_uuid,omitempty"`
	CLIBaseURL       string `yaml:"cli_base_url,omitempty"`
	WeniBaseURL      string `yaml:"weni_base_url,omitempty"`
	KeycloakURL      string `yaml:"keycloak_url,omitempty"`
	KeycloakRealm    string `yaml:"keycloak_realm,omitempty"`
	KeycloakClientID string `yaml:"keycloak_client_id,omitempty"`
	ToolkitVersion   string `yaml:"toolkit_version,omitempty"`
}

// Keys returns every known configuration key.
func Keys() []string {
	return []string{
		KeyToken,
		KeyProjectUUID,
		KeyCLIBaseURL,
		KeyWeniBaseURL,
		KeyKeycloakURL,
		KeyKeycloakRealm,
		KeyKeycloakClientID,
		KeyToolkitVersion,
	}
}

// field returns a pointer to the value stored under key, or nil if key is
// unknown.
func (c *Config) field(key string) *string {
	switch key {
	case KeyToken:
		return &c.Token
	case KeyProjectUUID:
		return &c.ProjectUUID
	case KeyCLIBaseURL:
		return &c.CLIBaseURL
	case KeyWeniBaseURL:
		return &c.WeniBaseURL
	case KeyKeycloakURL:
		return &c.KeycloakURL
	case KeyKeycloakRealm:
		return &c.KeycloakRealm
	case KeyKeycloakClientID:
		return &c.KeycloakClientID
	case KeyToolkitVersion:
		return &c.ToolkitVersion
	}
	return nil
}

// Get returns the value of key, or "" if it is unset or unknown.
func (c Config) Get(key string) string {
	if f := c.field(key); f != nil {
		return *f
	}
	return ""
}
