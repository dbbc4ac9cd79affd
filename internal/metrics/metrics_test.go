package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsAreNoops(t *testing.T) {
	var m *Metrics
	m.RecordSkipped("missing_project")
	m.ReviewAnomaly()
	m.FilterRun("active", 0.001)
	assert.NoError(t, m.WriteTextfile(filepath.Join(t.TempDir(), "x.prom")))
}

func TestCounters(t *testing.T) {
	m := New()
	m.RecordSkipped("missing_project")
	m.RecordSkipped("missing_project")
	m.RecordSkipped("missing_service")
	m.ReviewAnomaly()
	m.FilterRun("all", 0.0002)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RecordsSkipped.WithLabelValues("missing_project")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RecordsSkipped.WithLabelValues("missing_service")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReviewAnomalies))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FilterRuns.WithLabelValues("all")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.FilterDuration))
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.ReviewAnomaly()

	path := filepath.Join(t.TempDir(), "agency.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "agency_reviews_review_anomalies_total 1"))
}
