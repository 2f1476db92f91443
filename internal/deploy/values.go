package deploy

import (
	"fmt"
	"os"

	"sigs.k8s.io/yaml"
)

// LoadValues reads a Helm values file into the map shape the Helm actions
// expect. A missing path yields an empty map, not an error; charts with no
// overrides are common.
func LoadValues(path string) (map[string]interface{}, error) {
	if path == "" {
		return map[string]interface{}{}, nil
	}

	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]interface{}{}, nil
		}
		return nil, fmt.Errorf("failed to read values file: %w", err)
	}

	values := map[string]interface{}{}
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("failed to parse values file %s: %w", path, err)
	}
	return values, nil
}
