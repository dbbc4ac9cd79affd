// Package testutil provides testing utilities.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Golden compares got against testdata/<name>.golden.
// With GOLDEN_UPDATE set, the golden file is rewritten instead.
func Golden(t *testing.T, name string, got string) {
	t.Helper()

	goldenPath := filepath.Join("testdata", name+".golden")

	if os.Getenv("GOLDEN_UPDATE") != "" {
		require.NoError(t, os.MkdirAll("testdata", 0755))
		require.NoError(t, os.WriteFile(goldenPath, []byte(got), 0644))
		return
	}

	want, err := os.ReadFile(goldenPath)
	require.NoError(t, err, "read golden file %s\nGot:\n%s", goldenPath, got)
	assert.Equal(t, string(want), got, "output mismatch for %s", name)
}
