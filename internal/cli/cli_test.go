package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgienger/agency/internal/console"
	"github.com/tgienger/agency/internal/testutil"
)

type env struct {
	dir    string
	db     string
	config string
}

func newEnv(t *testing.T) env {
	t.Helper()
	dir := t.TempDir()
	return env{
		dir:    dir,
		db:     filepath.Join(dir, "agency.db"),
		config: filepath.Join(dir, "config.yaml"),
	}
}

func (e env) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(BuildInfo{Version: "test", Commit: "none", Date: "unknown"})
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--config", e.config, "--db", e.db}, args...))
	err := root.Execute()
	return out.String(), err
}

func (e env) imported(t *testing.T) env {
	t.Helper()
	out, err := e.run(t, "import", "testdata/snapshot.json")
	require.NoError(t, err)
	testutil.Golden(t, "import", out)
	return e
}

func TestImportSkipsBrokenEntries(t *testing.T) {
	e := newEnv(t)
	snapshot := filepath.Join(e.dir, "partial.json")
	require.NoError(t, os.WriteFile(snapshot, []byte(`{
		"workers": [{"id": 7}],
		"tasks": [
			{"workerId": 7, "id": 100, "name": "Logo"},
			{"workerId": 7, "name": "no id"},
			{"workerId": 7, "id": 101, "name": ""}
		]}`), 0600))

	out, err := e.run(t, "import", snapshot)
	require.NoError(t, err)
	assert.Equal(t, "imported 1 workers, 2 tasks, 0 materials, 0 reviews\n", out)
}

func TestTree(t *testing.T) {
	e := newEnv(t).imported(t)

	out, err := e.run(t, "tree", "--worker", "7")
	require.NoError(t, err)
	testutil.Golden(t, "tree_active", out)

	out, err = e.run(t, "tree", "--worker", "7", "--mode", "all")
	require.NoError(t, err)
	testutil.Golden(t, "tree_all", out)

	out, err = e.run(t, "tree", "--worker", "7", "--query", "proofread")
	require.NoError(t, err)
	testutil.Golden(t, "tree_empty", out)
}

func TestTreeSkipsRecordsWithoutProject(t *testing.T) {
	e := newEnv(t).imported(t)

	out, err := e.run(t, "tree", "--worker", "8", "--mode", "all")
	require.NoError(t, err)
	testutil.Golden(t, "tree_empty", out)
}

func TestTreeNeedsWorker(t *testing.T) {
	t.Setenv("AGENCY_WORKER", "")
	e := newEnv(t)

	_, err := e.run(t, "tree")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no worker id")
}

func TestTreeModeFromConfig(t *testing.T) {
	e := newEnv(t).imported(t)
	require.NoError(t, os.WriteFile(e.config, []byte("worker_id: \"7\"\nfilter:\n  default_mode: all\n"), 0600))

	out, err := e.run(t, "tree")
	require.NoError(t, err)
	testutil.Golden(t, "tree_all", out)
}

func TestReviews(t *testing.T) {
	e := newEnv(t).imported(t)

	out, err := e.run(t, "reviews", "500", "--reviewer", "8")
	require.NoError(t, err)
	testutil.Golden(t, "reviews_mine", out)

	out, err = e.run(t, "reviews", "500", "--reviewer", "7")
	require.NoError(t, err)
	testutil.Golden(t, "reviews_other", out)

	_, err = e.run(t, "reviews", "404")
	assert.ErrorIs(t, err, console.ErrMaterialNotFound)
}

func TestReviewLifecycle(t *testing.T) {
	e := newEnv(t).imported(t)

	out, err := e.run(t, "review", "submit", "500", "--reviewer", "7", "-c", "Call to action is weak")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "submitted review "), out)
	id := strings.TrimSpace(strings.TrimPrefix(out, "submitted review "))

	_, err = e.run(t, "review", "submit", "500", "--reviewer", "7", "-c", "again")
	assert.ErrorIs(t, err, console.ErrAlreadyReviewed)

	_, err = e.run(t, "review", "edit", "900", "--reviewer", "7", "-c", "not mine")
	assert.ErrorIs(t, err, console.ErrNotAuthor)

	out, err = e.run(t, "review", "edit", id, "--reviewer", "7", "-c", "Call to action fixed")
	require.NoError(t, err)
	assert.Equal(t, "updated review "+id+"\n", out)

	out, err = e.run(t, "reviews", "500", "--reviewer", "7")
	require.NoError(t, err)
	assert.Contains(t, out, "reviewed by you: "+id)
	assert.Contains(t, out, "Call to action fixed")

	_, err = e.run(t, "review", "delete", "900", "--reviewer", "7")
	assert.ErrorIs(t, err, console.ErrNotAuthor)

	out, err = e.run(t, "review", "delete", id, "--reviewer", "7")
	require.NoError(t, err)
	assert.Equal(t, "deleted review "+id+"\n", out)

	out, err = e.run(t, "reviews", "500", "--reviewer", "7")
	require.NoError(t, err)
	testutil.Golden(t, "reviews_other", out)
}

func TestReviewSubmitRequiresComments(t *testing.T) {
	e := newEnv(t).imported(t)

	_, err := e.run(t, "review", "submit", "500", "--reviewer", "7")
	assert.ErrorIs(t, err, console.ErrInvalidReview)
}

func TestMetricsTextfile(t *testing.T) {
	e := newEnv(t).imported(t)
	prom := filepath.Join(e.dir, "agency.prom")
	t.Setenv("AGENCY_METRICS_TEXTFILE", prom)

	_, err := e.run(t, "tree", "--worker", "8")
	require.NoError(t, err)

	data, err := os.ReadFile(prom)
	require.NoError(t, err)
	assert.Contains(t, string(data), `agency_filter_filter_runs_total{mode="active"} 1`)
	assert.Contains(t, string(data), `agency_grouping_records_skipped_total{reason="missing_project"} 1`)
}

func TestConfigInit(t *testing.T) {
	e := newEnv(t)

	out, err := e.run(t, "config", "init")
	require.NoError(t, err)
	assert.Equal(t, "wrote "+e.config+"\n", out)
	assert.FileExists(t, e.config)
	assert.NoFileExists(t, e.db)

	_, err = e.run(t, "config", "init")
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	e := newEnv(t)
	out, err := e.run(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "test (commit: none, built: unknown)")
}
