package secrets

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patternforge/patternctl/internal/cluster"
)

func writeSecretsFile(t *testing.T, dir, patternName, content string) {
	t.Helper()
	path := filepath.Join(dir, "values-secret-"+patternName+".yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestFileLoader_MissingFileIsSuccess(t *testing.T) {
	t.Parallel()
	mock := &cluster.Mock{}
	l := NewFileLoader(mock)
	l.dir = t.TempDir()

	ok, err := l.Load(context.Background(), "qtodo")

	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, mock.Secrets())
}

func TestFileLoader_CreatesDeclaredSecrets(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeSecretsFile(t, dir, "qtodo", `
secrets:
  - name: keycloak-admin
    namespace: keycloak-system
    fields:
      username: admin
      password: s3cret
  - name: vault-unseal
    namespace: vault
    fields:
      key: abc123
`)

	var created []map[string][]byte
	mock := &cluster.Mock{
		CreateSecretFunc: func(_ context.Context, _, _ string, data map[string][]byte) error {
			created = append(created, data)
			return nil
		},
	}
	l := NewFileLoader(mock)
	l.dir = dir

	ok, err := l.Load(context.Background(), "qtodo")

	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"keycloak-system/keycloak-admin", "vault/vault-unseal"}, mock.Secrets())
	require.Len(t, created, 2)
	assert.Equal(t, []byte("admin"), created[0]["username"])
	assert.Equal(t, []byte("s3cret"), created[0]["password"])
}

func TestFileLoader_MalformedYAML(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeSecretsFile(t, dir, "qtodo", "secrets: [unclosed")
	l := NewFileLoader(&cluster.Mock{})
	l.dir = dir

	ok, err := l.Load(context.Background(), "qtodo")

	require.Error(t, err)
	assert.False(t, ok)
	assert.Contains(t, err.Error(), "failed to parse secrets file")
}

func TestFileLoader_DeclarationMissingNamespace(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeSecretsFile(t, dir, "qtodo", `
secrets:
  - name: orphan
    fields:
      key: value
`)
	l := NewFileLoader(&cluster.Mock{})
	l.dir = dir

	ok, err := l.Load(context.Background(), "qtodo")

	require.Error(t, err)
	assert.False(t, ok)
	assert.Contains(t, err.Error(), "missing name or namespace")
}

func TestFileLoader_ClusterWriteFailure(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeSecretsFile(t, dir, "qtodo", `
secrets:
  - name: keycloak-admin
    namespace: keycloak-system
    fields:
      username: admin
`)
	mock := &cluster.Mock{
		CreateSecretFunc: func(context.Context, string, string, map[string][]byte) error {
			return assert.AnError
		},
	}
	l := NewFileLoader(mock)
	l.dir = dir

	ok, err := l.Load(context.Background(), "qtodo")

	require.Error(t, err)
	assert.False(t, ok)
}

func TestLoaderFunc(t *testing.T) {
	t.Parallel()
	var got string
	f := LoaderFunc(func(_ context.Context, patternName string) (bool, error) {
		got = patternName
		return true, nil
	})

	ok, err := f.Load(context.Background(), "qtodo")

	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "qtodo", got)
}
