package auditlog

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_FirstSession(t *testing.T) {
	t.Parallel()
	l, err := Open(t.TempDir())

	require.NoError(t, err)
	defer l.Close()
	assert.Equal(t, 0, l.Session())
}

func TestOpen_IncrementsSession(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "deploy-004.log"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "discovery-007.log"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), nil, 0o644))

	l, err := Open(dir)

	require.NoError(t, err)
	defer l.Close()
	assert.Equal(t, 8, l.Session(), "next session follows the highest across categories")
}

func TestOpen_SessionWrapsAt999(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "uninstall-999.log"), nil, 0o644))

	l, err := Open(dir)

	require.NoError(t, err)
	defer l.Close()
	assert.Equal(t, 0, l.Session())
}

func TestOpen_NumberingAdvancesPastWrap(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	old := time.Now().Add(-time.Hour)
	wrapped := filepath.Join(dir, "deploy-999.log")
	require.NoError(t, os.WriteFile(wrapped, nil, 0o644))
	require.NoError(t, os.Chtimes(wrapped, old, old))
	latest := filepath.Join(dir, "deploy-000.log")
	require.NoError(t, os.WriteFile(latest, nil, 0o644))
	require.NoError(t, os.Chtimes(latest, old.Add(time.Minute), old.Add(time.Minute)))

	l, err := Open(dir)

	require.NoError(t, err)
	defer l.Close()
	assert.Equal(t, 1, l.Session(), "the newest file drives numbering, not the biggest number")
}

func TestOpen_CreatesDirectory(t *testing.T) {
	t.Parallel()
	dir := filepath.Join(t.TempDir(), "logs", "nested")

	l, err := Open(dir)

	require.NoError(t, err)
	defer l.Close()
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestPrintf_AppendsTimestampedLines(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	l, err := Open(dir)
	require.NoError(t, err)
	l.now = func() time.Time { return time.Date(2026, 8, 28, 9, 30, 0, 0, time.UTC) }

	l.Printf(CategoryDiscovery, "vault-app namespace=%s source=%s", "vault", "config")
	l.Printf(CategoryDiscovery, "second line")
	l.Close()

	data, err := os.ReadFile(l.Path(CategoryDiscovery))
	require.NoError(t, err)
	assert.Contains(t, string(data), "2026-08-28T09:30:00Z vault-app namespace=vault source=config\n")
	assert.Contains(t, string(data), "second line\n")
}

func TestPrintf_CategoriesAreSeparateFiles(t *testing.T) {
	t.Parallel()
	l, err := Open(t.TempDir())
	require.NoError(t, err)
	defer l.Close()

	l.Printf(CategoryDeploy, "deploying")
	l.Printf(CategoryUninstall, "deleting")

	assert.NotEqual(t, l.Path(CategoryDeploy), l.Path(CategoryUninstall))
	deploy, err := os.ReadFile(l.Path(CategoryDeploy))
	require.NoError(t, err)
	assert.Contains(t, string(deploy), "deploying")
	assert.NotContains(t, string(deploy), "deleting")
}

func TestPrintf_ConcurrentWritersNeverInterleave(t *testing.T) {
	t.Parallel()
	l, err := Open(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				l.Printf(CategoryDeploy, "writer=%d line=%d", i, j)
			}
		}(i)
	}
	wg.Wait()
	l.Close()

	data, err := os.ReadFile(l.Path(CategoryDeploy))
	require.NoError(t, err)
	lines := 0
	for _, b := range data {
		if b == '\n' {
			lines++
		}
	}
	assert.Equal(t, 160, lines)
}

func TestOpen_PrunesOldSessions(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 15; i++ {
		name := filepath.Join(dir, fmt.Sprintf("deploy-%03d.log", i))
		require.NoError(t, os.WriteFile(name, nil, 0o644))
		require.NoError(t, os.Chtimes(name, base, base.Add(time.Duration(i)*time.Minute)))
	}
	// Another category keeps its own budget.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "discovery-000.log"), nil, 0o644))

	l, err := Open(dir)
	require.NoError(t, err)
	defer l.Close()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var deploys, discoveries int
	for _, e := range entries {
		m := fileNameRe.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		switch m[1] {
		case "deploy":
			deploys++
		case "discovery":
			discoveries++
		}
	}
	// 9 survivors plus this run's slot keeps the category at 10.
	assert.Equal(t, 9, deploys)
	assert.Equal(t, 1, discoveries)

	// The newest files are the ones kept.
	_, err = os.Stat(filepath.Join(dir, "deploy-014.log"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "deploy-005.log"))
	assert.True(t, os.IsNotExist(err))
}

func TestPath(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	l, err := Open(dir)
	require.NoError(t, err)
	defer l.Close()

	assert.Equal(t, filepath.Join(dir, "discovery-000.log"), l.Path(CategoryDiscovery))
}
