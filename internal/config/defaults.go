package config

// GetDefaultConfig returns the built-in configuration: production
// endpoints and no credentials.
func GetDefaultConfig() Config {
	return Config{
		CLIBaseURL:       "https://cli.cloud.weni.ai",
		WeniBaseURL:      "https://api.weni.ai",
		KeycloakURL:      "https://accounts.weni.ai/auth",
		KeycloakRealm:    "weni",
		KeycloakClientID: "weni-cli",
	}
}
