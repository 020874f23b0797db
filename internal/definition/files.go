package definition

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Files read from a tool folder when running its tests.
const (
	CredentialsFile = ".env"
	GlobalsFile     = ".globals"
)

// LoadTestDefinition reads a test definition file. Its content is sent to
// the server as is.
func LoadTestDefinition(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var test map[string]any
	if err := yaml.Unmarshal(data, &test); err != nil {
		return nil, err
	}
	if test == nil {
		test = map[string]any{}
	}
	return test, nil
}

// LoadToolEnv reads KEY=VALUE pairs from name inside dir. A missing file
// yields an empty map.
func LoadToolEnv(dir, name string) (map[string]string, error) {
	values, err := godotenv.Read(filepath.Join(dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, err
	}
	return values, nil
}
