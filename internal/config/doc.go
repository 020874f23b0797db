// Package config provides configuration management for weni.
//
// Configuration is a flat set of string keys loaded from several layers and
// merged in a specific order, with later sources overriding earlier ones.
//
// # Configuration Layers
//
//  1. Default Configuration (embedded in binary)
//     - API base URLs and the login realm
//
//  2. User Configuration (~/.config/weni/config.yaml)
//     - Written by the CLI itself: login stores the token here and
//     "project use" stores the selected project
//
//  3. Project Configuration (./.weni/config.yaml)
//     - Per-directory overrides, e.g. a staging base URL shared by a team
//
//  4. Environment (WENI_TOKEN, WENI_PROJECT_UUID)
//     - Useful in CI where no login is possible
//
// # Configuration Structure
//
//	token: "eyJhbGciOi..."
//	project_uuid: "5f2b6c0e-8f5e-4d4a-9a55-6a1d1c3f2e10"
//	cli_base_url: "https://cli.cloud.weni.ai"
//	weni_base_url: "https://api.weni.ai"
//	keycloak_url: "https://accounts.weni.ai/auth"
//	keycloak_realm: "weni"
//	keycloak_client_id: "weni-cli"
//	toolkit_version: "2.3.0"
//
// # Usage Example
//
//	store, err := config.OpenStore()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if store.Get(config.KeyToken) == "" {
//	    fmt.Println("Missing login authorization, please login first")
//	}
//
//	// Persisted to the user configuration file
//	err = store.Set(config.KeyProjectUUID, projectUUID)
package config
