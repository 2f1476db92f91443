// Package secrets is the secrets-loading collaborator of the install
// pipeline. It pushes locally held secret material into cluster Secrets
// before the operators that consume it are installed.
package secrets

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/patternforge/patternctl/internal/cluster"
)

// Loader loads the pattern's secret material into the cluster.
type Loader interface {
	// Load returns true when all declared secrets were loaded. A missing
	// secrets file is success with nothing to do.
	Load(ctx context.Context, patternName string) (bool, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context, patternName string) (bool, error)

func (f LoaderFunc) Load(ctx context.Context, patternName string) (bool, error) {
	return f(ctx, patternName)
}

// secretsFile is the on-disk declaration format:
//
//	secrets:
//	  - name: keycloak-admin
//	    namespace: keycloak-system
//	    fields:
//	      username: admin
//	      password: "..."
type secretsFile struct {
	Secrets []secretDecl `yaml:"secrets"`
}

type secretDecl struct {
	Name      string            `yaml:"name"`
	Namespace string            `yaml:"namespace"`
	Fields    map[string]string `yaml:"fields"`
}

// FileLoader reads values-secret-<pattern>.yaml from the user's home
// directory and creates one opaque Secret per declaration.
type FileLoader struct {
	cluster cluster.Interface

	// dir overrides the home directory lookup in tests.
	dir string
}

// NewFileLoader creates a loader that writes through the given cluster
// collaborator.
func NewFileLoader(cl cluster.Interface) *FileLoader {
	return &FileLoader{cluster: cl}
}

// Load implements Loader.
func (l *FileLoader) Load(ctx context.Context, patternName string) (bool, error) {
	path, err := l.secretsPath(patternName)
	if err != nil {
		return false, err
	}

	// #nosec G304
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read secrets file: %w", err)
	}

	var file secretsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return false, fmt.Errorf("failed to parse secrets file %s: %w", path, err)
	}

	for _, decl := range file.Secrets {
		if decl.Name == "" || decl.Namespace == "" {
			return false, fmt.Errorf("secret declaration missing name or namespace in %s", path)
		}
		data := make(map[string][]byte, len(decl.Fields))
		for k, v := range decl.Fields {
			data[k] = []byte(v)
		}
		if err := l.cluster.CreateSecret(ctx, decl.Namespace, decl.Name, data); err != nil {
			return false, err
		}
	}
	return true, nil
}

func (l *FileLoader) secretsPath(patternName string) (string, error) {
	dir := l.dir
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to locate home directory: %w", err)
		}
		dir = home
	}
	return filepath.Join(dir, fmt.Sprintf("values-secret-%s.yaml", patternName)), nil
}
