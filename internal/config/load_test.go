package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patternforge/patternctl/internal/pattern"
)

const sampleConfig = `
pattern: qtodo
components:
  infrastructure:
    - id: cert-utils
      chart: charts/cert-utils
  operators:
    - id: vault-operator
      subscription: vault-operator
      channel: stable
      namespace: openshift-operators
  controller:
    - id: gitops
      application: pattern-root
  applications:
    - id: vault-app
      application: vault-app
    - id: qtodo-app
      application: qtodo-app
      namespace: qtodo
`

func TestLoad(t *testing.T) {
	t.Parallel()
	cfg, err := Load([]byte(sampleConfig))

	require.NoError(t, err)
	assert.Equal(t, "qtodo", cfg.Pattern)
	assert.Equal(t, "openshift-gitops", cfg.GitopsNamespace, "default applies")
	assert.Equal(t, "logs", cfg.LogDir, "default applies")
	require.Len(t, cfg.ComponentSet.Operators, 1)
	assert.Equal(t, "stable", cfg.ComponentSet.Operators[0].Channel)
	require.Len(t, cfg.ComponentSet.Applications, 2)
	assert.Equal(t, "qtodo", cfg.ComponentSet.Applications[1].Namespace)
}

func TestLoad_ImplementsSource(t *testing.T) {
	t.Parallel()
	cfg, err := Load([]byte(sampleConfig))
	require.NoError(t, err)

	cats := cfg.Categories()
	assert.Equal(t, []pattern.Category{
		pattern.CategoryInfrastructure,
		pattern.CategoryOperator,
		pattern.CategoryController,
		pattern.CategoryApplication,
	}, cats)

	hints, err := cfg.Components(pattern.CategoryApplication)
	require.NoError(t, err)
	require.Len(t, hints, 2)
	assert.Equal(t, "vault-app", hints[0].SyncUnit)

	dir, err := pattern.Load(cfg)
	require.NoError(t, err)
	assert.Equal(t, 5, dir.Len())
}

func TestLoad_InvalidYAML(t *testing.T) {
	t.Parallel()
	_, err := Load([]byte("pattern: [unclosed"))

	var cfgErr *pattern.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Error(), "unmarshalling yaml")
}

func TestLoad_MissingPatternName(t *testing.T) {
	t.Parallel()
	_, err := Load([]byte("components:\n  operators:\n    - id: x\n"))

	var cfgErr *pattern.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Error(), "pattern name is required")
}

func TestLoad_NoComponents(t *testing.T) {
	t.Parallel()
	_, err := Load([]byte("pattern: qtodo\n"))

	var cfgErr *pattern.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Error(), "no components declared")
}

func TestLoad_ComponentWithoutID(t *testing.T) {
	t.Parallel()
	_, err := Load([]byte("pattern: qtodo\ncomponents:\n  applications:\n    - application: anonymous\n"))

	var cfgErr *pattern.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Error(), "without id")
}

func TestLoadFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "pattern.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0o600))

	cfg, err := LoadFile(path)

	require.NoError(t, err)
	assert.Equal(t, "qtodo", cfg.Pattern)
}

func TestLoadFile_Missing(t *testing.T) {
	t.Parallel()
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))

	var cfgErr *pattern.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Error(), "reading config file")
}
