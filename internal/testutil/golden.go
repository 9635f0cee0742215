package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// GoldenDir is the directory golden files live in, relative to the package.
const GoldenDir = "testdata"

// Golden compares got against testdata/<name>.golden.
// With UPDATE_GOLDEN set, the golden file is rewritten instead.
func Golden(t *testing.T, name string, got string) {
	t.Helper()

	path := filepath.Join(GoldenDir, name+".golden")
	if os.Getenv("UPDATE_GOLDEN") != "" {
		require.NoError(t, os.MkdirAll(GoldenDir, 0755))
		require.NoError(t, os.WriteFile(path, []byte(got), 0644))
		return
	}

	want, err := os.ReadFile(path)
	require.NoError(t, err, "reading golden file %s; got:\n%s", path, got)
	assert.Equal(t, string(want), got, "output mismatch for %s", name)
}
